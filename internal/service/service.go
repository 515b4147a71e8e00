package service

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"gitlab.com/dirk.krummacker/contacts-api/internal/model"
	"gitlab.com/dirk.krummacker/contacts-api/internal/repository"
)

// repo is a handle to the contact repository. It is shared by all requests;
// the repository itself keeps no per-request state.
var repo *repository.Repository

// SetupRepository installs the repository used by all request handlers. The
// argument can be a repository on the real Redis store for production use
// or one on a memory store within unit tests.
func SetupRepository(r *repository.Repository) {
	repo = r
}

// SetupHttpRouter initializes the REST API router and registers all
// endpoints. CORS allows the given origin ("*" for any), the methods of the
// API, and all headers; credentials stay disallowed.
func SetupHttpRouter(allowOrigins string) *gin.Engine {
	var router *gin.Engine
	if strings.EqualFold(os.Getenv("GIN_LOGGING"), "off") {
		fmt.Println("Turning off HTTP request logging.")
		router = gin.New()
	} else {
		router = gin.Default()
	}
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{allowOrigins},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"*"},
		AllowCredentials: false,
	}))
	router.GET("/health", health)
	router.GET("/contacts", findContacts)
	router.POST("/contacts", createContact)
	router.GET("/contacts/:id", findContactByID)
	router.PUT("/contacts/:id", updateContactByID)
	router.DELETE("/contacts/:id", deleteContactByID)
	return router
}

// health answers liveness probes.
//
// Example REST API call:
//
//	> curl http://localhost:8080/health
func health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// createContact stores the contact specified in the request's JSON. The
// server assigns the id and both timestamps; a missing tag defaults to
// "other". It responds with the full contact data, with status 409 if the
// email is already taken, and with status 422 if the body does not validate.
//
// Example REST API call:
//
//	> curl http://localhost:8080/contacts --request "POST" --include --header "Content-Type: application/json" --data '{"name": "Hans Wurst", "email": "hans@example.com", "tag": "friend"}'
func createContact(c *gin.Context) {
	var payload model.ContactCreate
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.AbortWithStatusJSON(http.StatusUnprocessableEntity, gin.H{"message": err.Error()})
		return
	}
	contact, err := repo.Create(c.Request.Context(), payload)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			c.AbortWithStatusJSON(http.StatusConflict, gin.H{"message": "email already exists"})
		} else {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"message": err.Error()})
		}
		return
	}
	c.JSON(http.StatusCreated, contact)
}

// findContactByID locates the contact whose id matches the id parameter of
// the request URL, then returns that contact as a response.
//
// Example REST API call:
//
//	> curl http://localhost:8080/contacts/8e2a7f9c-4b1d-4f7e-9c3a-2d5b8e1f6a0b
func findContactByID(c *gin.Context) {
	contact, err := repo.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"message": err.Error()})
		return
	}
	if contact == nil {
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"message": "contact not found"})
		return
	}
	c.JSON(http.StatusOK, contact)
}

// findContacts responds with a list of contacts as JSON, sorted by name
// ascending regardless of letter case.
//
// The URL parameter 'tag' restricts the result to contacts carrying exactly
// that tag. A tag value outside the known set matches nothing and yields an
// empty list.
//
// REST API calls:
//
//	> curl "http://localhost:8080/contacts"
//	> curl "http://localhost:8080/contacts?tag=friend"
func findContacts(c *gin.Context) {
	contacts, err := repo.List(c.Request.Context(), c.Query("tag"))
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"message": err.Error()})
		return
	}
	if contacts == nil {
		contacts = []model.Contact{}
	}
	c.JSON(http.StatusOK, contacts)
}

// updateContactByID updates the contact whose id matches the id parameter
// of the request URL, changes the values specified in the JSON (and only
// those), and finally responds with the new version of the contact. Fields
// absent from the body keep their stored values; updated_at is refreshed
// either way.
//
// Example REST API calls:
//
//	> curl http://localhost:8080/contacts/8e2a7f9c-4b1d-4f7e-9c3a-2d5b8e1f6a0b --request "PUT" --include --header "Content-Type: application/json" --data '{"name": "Hans Wurstmann"}'
//	> curl http://localhost:8080/contacts/8e2a7f9c-4b1d-4f7e-9c3a-2d5b8e1f6a0b --request "PUT" --include --header "Content-Type: application/json" --data '{"email": "neu@example.com", "tag": "work"}'
func updateContactByID(c *gin.Context) {
	var payload model.ContactUpdate
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.AbortWithStatusJSON(http.StatusUnprocessableEntity, gin.H{"message": err.Error()})
		return
	}
	contact, err := repo.Update(c.Request.Context(), c.Param("id"), payload)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			c.AbortWithStatusJSON(http.StatusConflict, gin.H{"message": "email already exists"})
		} else {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"message": err.Error()})
		}
		return
	}
	if contact == nil {
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"message": "contact not found"})
		return
	}
	c.JSON(http.StatusOK, contact)
}

// deleteContactByID deletes the contact whose id matches the id parameter
// of the request URL. It responds with status 204 on success and 404 if no
// such contact exists.
//
// Example REST API call:
//
//	> curl http://localhost:8080/contacts/8e2a7f9c-4b1d-4f7e-9c3a-2d5b8e1f6a0b --request "DELETE"
func deleteContactByID(c *gin.Context) {
	deleted, err := repo.Delete(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"message": err.Error()})
		return
	}
	if !deleted {
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"message": "contact not found"})
		return
	}
	c.Status(http.StatusNoContent)
}
