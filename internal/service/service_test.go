package service

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"gitlab.com/dirk.krummacker/contacts-api/internal/logger"
	"gitlab.com/dirk.krummacker/contacts-api/internal/model"
	"gitlab.com/dirk.krummacker/contacts-api/internal/repository"
	"gitlab.com/dirk.krummacker/contacts-api/internal/store"
)

// initializeContactsService sets up the service with a fresh in-memory
// store and returns a handle to the gin engine against which requests can
// be executed.
func initializeContactsService() *gin.Engine {
	log := &logger.Logger{SugaredLogger: zap.NewNop().Sugar()}
	SetupRepository(repository.New(store.NewMemoryStore(), log))
	gin.SetMode(gin.ReleaseMode)
	return SetupHttpRouter("*")
}

// runRequest executes the HTTP request with the specified arguments against
// the router and returns the response.
func runRequest(router *gin.Engine, method string, url string, body string) *httptest.ResponseRecorder {
	recorder := httptest.NewRecorder()
	request, _ := http.NewRequest(method, url, strings.NewReader(body))
	request.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(recorder, request)
	return recorder
}

// createTestContact posts a contact and returns its assigned id.
func createTestContact(t *testing.T, router *gin.Engine, name string, email string, tag string) string {
	body := `{"name": "` + name + `", "email": "` + email + `"`
	if tag != "" {
		body += `, "tag": "` + tag + `"`
	}
	body += `}`
	recorder := runRequest(router, "POST", "/contacts", body)
	assert.Equal(t, http.StatusCreated, recorder.Code)
	var contact model.Contact
	json.Unmarshal(recorder.Body.Bytes(), &contact)
	return contact.Id
}

// TestHealth executes a GET request against the health endpoint and expects
// an ok status.
func TestHealth(t *testing.T) {
	router := initializeContactsService()
	recorder := runRequest(router, "GET", "/health", "")
	assert.Equal(t, http.StatusOK, recorder.Code)
	var body map[string]interface{}
	json.Unmarshal(recorder.Body.Bytes(), &body)
	assert.Equal(t, "ok", body["status"])
}

// TestPost executes a POST request with a valid body. It expects that the
// HTTP request is answered with the CREATED status code and a body carrying
// the posted values plus the server-assigned id and timestamps.
func TestPost(t *testing.T) {
	router := initializeContactsService()
	recorder := runRequest(router, "POST", "/contacts", `
		{
			"name": "Erika Mustermann",
			"email": "erika@example.com",
			"tag": "friend"
		}
	`)
	assert.Equal(t, http.StatusCreated, recorder.Code)
	var postBody map[string]interface{}
	json.Unmarshal(recorder.Body.Bytes(), &postBody)
	assert.NotEmpty(t, postBody["id"])
	assert.Equal(t, "Erika Mustermann", postBody["name"])
	assert.Equal(t, "erika@example.com", postBody["email"])
	assert.Equal(t, "friend", postBody["tag"])
	assert.Equal(t, postBody["created_at"], postBody["updated_at"])
}

// TestPostDefaultTag executes a POST request without a tag and expects the
// stored contact to carry the tag "other".
func TestPostDefaultTag(t *testing.T) {
	router := initializeContactsService()
	recorder := runRequest(router, "POST", "/contacts", `
		{
			"name": "Erika Mustermann",
			"email": "erika@example.com"
		}
	`)
	assert.Equal(t, http.StatusCreated, recorder.Code)
	var postBody map[string]interface{}
	json.Unmarshal(recorder.Body.Bytes(), &postBody)
	assert.Equal(t, "other", postBody["tag"])
}

// TestPostInvalidBodies executes POST requests with invalid bodies. It
// expects that the HTTP requests are all answered with the UNPROCESSABLE
// ENTITY status code.
func TestPostInvalidBodies(t *testing.T) {
	invalidRequestBodies := []string{
		"",
		"not JSON",
		`{}`,
		`{"name": "Erika"}`,                                           // email missing
		`{"email": "erika@example.com"}`,                              // name missing
		`{"name": "", "email": "erika@example.com"}`,                  // name empty
		`{"name": "Erika", "email": "not-an-email"}`,                  // bad email syntax
		`{"name": "Erika", "email": "e@example.com", "tag": "enemy"}`, // unknown tag
		`{"name": "` + strings.Repeat("x", 121) + `", "email": "e@example.com"}`, // name too long
	}
	for _, body := range invalidRequestBodies {
		router := initializeContactsService()
		recorder := runRequest(router, "POST", "/contacts", body)
		assert.Equal(t, http.StatusUnprocessableEntity, recorder.Code, "request body: "+body)
	}
}

// TestPostDuplicateEmail executes two POST requests with the same email and
// expects the second to be answered with the CONFLICT status code.
func TestPostDuplicateEmail(t *testing.T) {
	router := initializeContactsService()
	createTestContact(t, router, "Erika", "erika@example.com", "")
	recorder := runRequest(router, "POST", "/contacts", `
		{
			"name": "Other Erika",
			"email": "erika@example.com"
		}
	`)
	assert.Equal(t, http.StatusConflict, recorder.Code)
}

// TestGet executes a GET request for a single contact with a valid id and
// expects the JSON for the contact.
func TestGet(t *testing.T) {
	router := initializeContactsService()
	id := createTestContact(t, router, "Erika Mustermann", "erika@example.com", "family")

	recorder := runRequest(router, "GET", "/contacts/"+id, "")
	assert.Equal(t, http.StatusOK, recorder.Code)
	var getBody map[string]interface{}
	json.Unmarshal(recorder.Body.Bytes(), &getBody)
	assert.Equal(t, id, getBody["id"])
	assert.Equal(t, "Erika Mustermann", getBody["name"])
	assert.Equal(t, "erika@example.com", getBody["email"])
	assert.Equal(t, "family", getBody["tag"])
}

// TestGetUnknownID executes a GET request with an id that does not exist
// and expects the NOT FOUND status code.
func TestGetUnknownID(t *testing.T) {
	router := initializeContactsService()
	recorder := runRequest(router, "GET", "/contacts/no-such-id", "")
	assert.Equal(t, http.StatusNotFound, recorder.Code)
}

// TestGetAll executes a GET request for all contacts and expects them
// sorted by name ascending regardless of letter case.
func TestGetAll(t *testing.T) {
	router := initializeContactsService()
	createTestContact(t, router, "bob", "bob@example.com", "")
	createTestContact(t, router, "Alice", "alice@example.com", "")
	createTestContact(t, router, "carol", "carol@example.com", "")

	recorder := runRequest(router, "GET", "/contacts", "")
	assert.Equal(t, http.StatusOK, recorder.Code)
	var contacts []model.Contact
	json.Unmarshal(recorder.Body.Bytes(), &contacts)
	assert.Equal(t, 3, len(contacts))
	assert.Equal(t, "Alice", contacts[0].Name)
	assert.Equal(t, "bob", contacts[1].Name)
	assert.Equal(t, "carol", contacts[2].Name)
}

// TestGetAllEmpty executes a GET request against an empty store and expects
// an empty JSON list, not null.
func TestGetAllEmpty(t *testing.T) {
	router := initializeContactsService()
	recorder := runRequest(router, "GET", "/contacts", "")
	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.Equal(t, "[]", recorder.Body.String())
}

// TestGetByTag executes a GET request with a tag filter and expects only
// contacts carrying exactly that tag.
func TestGetByTag(t *testing.T) {
	router := initializeContactsService()
	createTestContact(t, router, "Walter", "walter@example.com", "work")
	createTestContact(t, router, "Berta", "berta@example.com", "friend")
	createTestContact(t, router, "Anna", "anna@example.com", "friend")

	recorder := runRequest(router, "GET", "/contacts?tag=friend", "")
	assert.Equal(t, http.StatusOK, recorder.Code)
	var contacts []model.Contact
	json.Unmarshal(recorder.Body.Bytes(), &contacts)
	assert.Equal(t, 2, len(contacts))
	assert.Equal(t, "Anna", contacts[0].Name)
	assert.Equal(t, "Berta", contacts[1].Name)
}

// TestPutPartial executes a PUT request that changes only the name and
// expects email and tag to keep their stored values.
func TestPutPartial(t *testing.T) {
	router := initializeContactsService()
	id := createTestContact(t, router, "Erika Mustermann", "erika@example.com", "work")

	recorder := runRequest(router, "PUT", "/contacts/"+id, `
		{
			"name": "Erika Musterfrau"
		}
	`)
	assert.Equal(t, http.StatusOK, recorder.Code)
	var putBody map[string]interface{}
	json.Unmarshal(recorder.Body.Bytes(), &putBody)
	assert.Equal(t, id, putBody["id"])
	assert.Equal(t, "Erika Musterfrau", putBody["name"])
	assert.Equal(t, "erika@example.com", putBody["email"])
	assert.Equal(t, "work", putBody["tag"])
}

// TestPutUnknownID executes a PUT request with an id that does not exist
// and expects the NOT FOUND status code.
func TestPutUnknownID(t *testing.T) {
	router := initializeContactsService()
	recorder := runRequest(router, "PUT", "/contacts/no-such-id", `
		{
			"name": "Erika"
		}
	`)
	assert.Equal(t, http.StatusNotFound, recorder.Code)
}

// TestPutDuplicateEmail executes a PUT request moving a contact onto an
// email held by a different contact and expects the CONFLICT status code.
// Re-submitting the contact's own email must succeed.
func TestPutDuplicateEmail(t *testing.T) {
	router := initializeContactsService()
	idA := createTestContact(t, router, "A", "a@x.com", "")
	idB := createTestContact(t, router, "B", "b@x.com", "")

	recorder := runRequest(router, "PUT", "/contacts/"+idB, `{"email": "a@x.com"}`)
	assert.Equal(t, http.StatusConflict, recorder.Code)

	recorder = runRequest(router, "PUT", "/contacts/"+idA, `{"email": "a@x.com"}`)
	assert.Equal(t, http.StatusOK, recorder.Code)
}

// TestPutInvalidBodies executes PUT requests with invalid bodies and
// expects the UNPROCESSABLE ENTITY status code.
func TestPutInvalidBodies(t *testing.T) {
	invalidRequestBodies := []string{
		"not JSON",
		`{"email": "not-an-email"}`,
		`{"name": ""}`,
		`{"tag": "enemy"}`,
	}
	for _, body := range invalidRequestBodies {
		router := initializeContactsService()
		id := createTestContact(t, router, "Erika", "erika@example.com", "")
		recorder := runRequest(router, "PUT", "/contacts/"+id, body)
		assert.Equal(t, http.StatusUnprocessableEntity, recorder.Code, "request body: "+body)
	}
}

// TestDelete executes a DELETE request for an existing contact and expects
// the NO CONTENT status code once and the NOT FOUND status code on the
// second attempt.
func TestDelete(t *testing.T) {
	router := initializeContactsService()
	id := createTestContact(t, router, "Erika", "erika@example.com", "")

	recorder := runRequest(router, "DELETE", "/contacts/"+id, "")
	assert.Equal(t, http.StatusNoContent, recorder.Code)
	assert.Empty(t, recorder.Body.String())

	recorder = runRequest(router, "DELETE", "/contacts/"+id, "")
	assert.Equal(t, http.StatusNotFound, recorder.Code)
}

// TestCORSHeader expects responses to carry the configured allowed origin.
func TestCORSHeader(t *testing.T) {
	router := initializeContactsService()
	recorder := httptest.NewRecorder()
	request, _ := http.NewRequest("GET", "/health", nil)
	request.Header.Set("Origin", "http://example.com")
	router.ServeHTTP(recorder, request)
	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.Equal(t, "*", recorder.Header().Get("Access-Control-Allow-Origin"))
}
