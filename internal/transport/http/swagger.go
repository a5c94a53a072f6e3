package http

import (
	"net/http"
	"os"
	"path/filepath"

	"github.com/ghodss/yaml"
	"github.com/labstack/echo/v4"
	echoSwagger "github.com/swaggo/echo-swagger"

	"github.com/wayplanhq/wayplan-backend/internal/util"
)

const swaggerSpecFile = "swagger.yaml"

// RegisterSwagger serves the hand-maintained API document under /swagger.
// The YAML source in docs/ is converted to JSON on each request so edits
// show up without a rebuild.
func RegisterSwagger(e *echo.Echo) {
	e.GET("/swagger/doc.json", func(c echo.Context) error {
		data, err := os.ReadFile(filepath.Join("docs", swaggerSpecFile))
		if err != nil {
			c.Logger().Errorf("read api doc: %v", err)
			return c.JSON(http.StatusInternalServerError, util.Error("api documentation unavailable"))
		}
		jsonDoc, err := yaml.YAMLToJSON(data)
		if err != nil {
			c.Logger().Errorf("convert api doc: %v", err)
			return c.JSON(http.StatusInternalServerError, util.Error("api documentation unavailable"))
		}
		return c.Blob(http.StatusOK, echo.MIMEApplicationJSONCharsetUTF8, jsonDoc)
	})
	e.GET("/swagger/*", echoSwagger.WrapHandler)
}
