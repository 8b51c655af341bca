package api

import (
	"bytes"
	"html/template"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"jobdeck-gateway/internal/guard"
	"jobdeck-gateway/internal/models"
)

// pageTemplate is the minimal shell the portal frontend boots from.
// The real UI hydrates client-side; the server only decides whether the
// page may render at all.
var pageTemplate = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html>
<head><title>{{.Title}} - JobDeck</title></head>
<body data-page="{{.Page}}"{{if .Role}} data-role="{{.Role}}"{{end}}{{if .From}} data-from="{{.From}}"{{end}}>
<div id="root"></div>
</body>
</html>
`))

type pageData struct {
	Title string
	Page  string
	Role  models.Role
	From  string
}

func renderPage(c echo.Context, data pageData) error {
	var buf bytes.Buffer
	if err := pageTemplate.Execute(&buf, data); err != nil {
		return err
	}
	return c.HTML(http.StatusOK, buf.String())
}

// homePage handles GET /
func homePage(c echo.Context) error {
	return renderPage(c, pageData{Title: "Home", Page: "home"})
}

// loginPage renders the role-specific login surface. The guard passes
// the originally requested location in the from parameter; it is echoed
// into the page so the UI can return the user there after login.
func loginPage(role models.Role) echo.HandlerFunc {
	return func(c echo.Context) error {
		from := guard.SafeFromPath(c.QueryParam(guard.FromParam))
		return renderPage(c, pageData{
			Title: titleCase(string(role)) + " Login",
			Page:  "login",
			Role:  role,
			From:  from,
		})
	}
}

// dashboardPage renders a role-scoped dashboard shell. The route guard
// has already decided whether this user may see it.
func dashboardPage(role models.Role) echo.HandlerFunc {
	return func(c echo.Context) error {
		return renderPage(c, pageData{
			Title: titleCase(string(role)) + " Dashboard",
			Page:  "dashboard",
			Role:  role,
		})
	}
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
