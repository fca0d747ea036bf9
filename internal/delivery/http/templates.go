package http

import (
	"embed"
	"html/template"

	"github.com/bikeshare/dashboard/internal/domain"
	"github.com/bikeshare/dashboard/pkg/utils"
)

const pageTitle = "Bike Sharing Dashboard"

//go:embed templates/*.html
var templateFS embed.FS

var templates = template.Must(template.New("").Funcs(template.FuncMap{
	"thousands": utils.FormatThousands,
}).ParseFS(templateFS, "templates/*.html"))

// pageData feeds templates/index.html
type pageData struct {
	Title      string
	LogoURL    string
	Bounds     domain.DatasetBounds
	Start      string
	End        string
	Rows       int
	Empty      bool
	EmptyText  string
	TrendsSrc  template.URL
	WeatherSrc template.URL
}

// errorData feeds templates/error.html
type errorData struct {
	Title     string
	Code      int
	Status    string
	Message   string
	RequestID string
}
