package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"os"
)

// seedContact is one entry of the seed file: a JSON array of objects with
// name, email and an optional tag.
type seedContact struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Tag   string `json:"tag,omitempty"`
}

// Usage example on the command line:
// > go run main.go -file=../../scripts/contacts.json -url=http://localhost:8080
func main() {
	filePtr := flag.String("file", "contacts.json", "the JSON file with contacts to load")
	urlPtr := flag.String("url", "http://localhost:8080", "the base URL of the running service")
	flag.Parse()

	readFile, err := os.Open(*filePtr) // nosemgrep
	if err != nil {
		panic(err)
	}
	defer readFile.Close()

	var contacts []seedContact
	if err := json.NewDecoder(readFile).Decode(&contacts); err != nil {
		panic(err)
	}

	for _, contact := range contacts {
		body, err := json.Marshal(contact)
		if err != nil {
			panic(err)
		}
		res, err := http.Post(*urlPtr+"/contacts", "application/json", bytes.NewReader(body))
		if err != nil {
			panic(err)
		}
		res.Body.Close()
		// 409 means the contact was already loaded by an earlier run.
		fmt.Printf("%s -> %s\n", contact.Email, res.Status)
	}
}
