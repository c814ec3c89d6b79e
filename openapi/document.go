package openapi

import (
	"encoding/json"
	"net/http"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/labstack/echo/v4"
	"gopkg.in/yaml.v3"

	"github.com/cloudkeep/authd/config"
)

// Document is the OpenAPI 3 description of the authentication API,
// served at /openapi.json and /openapi.yaml.
type Document struct {
	spec *openapi3.T
}

func NewDocument(cfg *config.Config) *Document {
	spec := &openapi3.T{
		OpenAPI: "3.0.3",
		Info: &openapi3.Info{
			Title:       cfg.App.Name,
			Version:     "1.0.0",
			Description: "Registration, login with device trust, session refresh and logout.",
		},
		Servers: openapi3.Servers{
			&openapi3.Server{URL: cfg.App.URL},
		},
		Paths: openapi3.NewPaths(),
	}

	d := &Document{spec: spec}

	d.add("/api/auth/register", http.MethodPost, operation(
		"register", "Register a new account",
		"201", "Account created",
		"400", "Invalid email or password shape",
		"409", "Email already registered",
	))
	d.add("/api/auth/login", http.MethodPost, operation(
		"login", "Verify credentials and grant a session from a trusted device",
		"200", "Session granted, token cookies set",
		"403", "Credential mismatch, or a device challenge requiring password confirmation",
		"404", "Account not found",
	))
	d.add("/api/auth/confirm-device", http.MethodPost, operation(
		"confirmDevice", "Confirm the account password to trust the current device",
		"200", "Device trusted, session granted",
		"403", "Credential mismatch or confirmation window elapsed",
		"404", "Account or pending confirmation not found",
	))
	d.add("/api/auth/session", http.MethodGet, operation(
		"checkSession", "Validate the session cookies, silently renewing expired access tokens",
		"200", "Session valid, possibly with renewed cookies",
		"401", "Missing or invalid refresh token",
		"404", "Account behind the token no longer exists",
	))
	d.add("/api/auth/logout", http.MethodPost, operation(
		"logout", "Close the session and erase the token cookies",
		"200", "Session closed",
		"401", "No session to close; cookies erased regardless",
	))
	d.add("/api/users/me", http.MethodGet, operation(
		"me", "Profile of the authenticated account",
		"200", "Account profile",
		"401", "Missing or invalid access token",
	))

	return d
}

func (d *Document) add(path, method string, op *openapi3.Operation) {
	item := d.spec.Paths.Value(path)
	if item == nil {
		item = &openapi3.PathItem{}
		d.spec.Paths.Set(path, item)
	}
	item.SetOperation(method, op)
}

// operation builds an operation from alternating status/description
// pairs.
func operation(id, summary string, statusPairs ...string) *openapi3.Operation {
	responses := openapi3.NewResponses()
	for i := 0; i+1 < len(statusPairs); i += 2 {
		desc := statusPairs[i+1]
		responses.Set(statusPairs[i], &openapi3.ResponseRef{
			Value: openapi3.NewResponse().WithDescription(desc),
		})
	}

	return &openapi3.Operation{
		OperationID: id,
		Summary:     summary,
		Tags:        []string{"auth"},
		Responses:   responses,
	}
}

func (d *Document) Spec() *openapi3.T {
	return d.spec
}

func (d *Document) ServeJSON(c echo.Context) error {
	return c.JSON(http.StatusOK, d.spec)
}

func (d *Document) ServeYAML(c echo.Context) error {
	data, err := json.Marshal(d.spec)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to render document")
	}

	var intermediate map[string]any
	if err := json.Unmarshal(data, &intermediate); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to render document")
	}

	out, err := yaml.Marshal(intermediate)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to render document")
	}

	return c.Blob(http.StatusOK, "application/yaml", out)
}
