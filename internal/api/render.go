package api

import (
	"embed"
	"html/template"
	"net/http"
	"strconv"
	"time"

	"github.com/blog-cms/internal/validation"
	"github.com/gin-gonic/gin"
)

//go:embed templates
var templatesFS embed.FS

const timeLayout = "2006-01-02 15:04"

var templateFuncs = template.FuncMap{
	"formatTime": formatTime,
}

// parseTemplates loads every page; each file defines its own template name
func parseTemplates() (*template.Template, error) {
	return template.New("").Funcs(templateFuncs).ParseFS(templatesFS,
		"templates/*.html",
		"templates/blog/*.html",
		"templates/admin/*.html",
	)
}

func formatTime(v interface{}) string {
	switch t := v.(type) {
	case time.Time:
		if t.IsZero() {
			return ""
		}
		return t.Local().Format(timeLayout)
	case *time.Time:
		if t == nil || t.IsZero() {
			return ""
		}
		return t.Local().Format(timeLayout)
	}
	return ""
}

// render executes a page template with the shared layout fields filled in
func render(c *gin.Context, status int, name string, data gin.H) {
	if data == nil {
		data = gin.H{}
	}
	message, errMsg := takeFlashes(c)
	if message != "" {
		data["Flash"] = message
	}
	if errMsg != "" {
		data["FlashError"] = errMsg
	}
	if account := currentAccount(c); account != nil {
		data["CurrentUser"] = account
	}
	c.HTML(status, name, data)
}

func renderError(c *gin.Context, status int, message string) {
	render(c, status, "error", gin.H{
		"Title":   http.StatusText(status),
		"Status":  status,
		"Message": message,
	})
}

// formData wraps a form with its field errors and an optional form-level error
func formData(form interface{}, errs validation.Errors, globalErr string) gin.H {
	data := gin.H{
		"Form":   form,
		"Errors": errs.ByField(),
	}
	if globalErr != "" {
		data["GlobalError"] = globalErr
	}
	return data
}

// redirectWithFlash stores a one-time message and redirects
func redirectWithFlash(c *gin.Context, key, msg, location string) {
	_ = addFlash(c, key, msg)
	c.Redirect(http.StatusFound, location)
}

// parseID reads the :id path parameter; anything but a positive integer is rejected
func parseID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
