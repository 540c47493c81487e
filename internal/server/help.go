package server

import (
	"io/fs"
	"net/http"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/parser"
)

// renderHelp converts the embedded help.md to HTML once at startup.
func renderHelp(webRoot fs.FS) ([]byte, error) {
	src, err := fs.ReadFile(webRoot, "help.md")
	if err != nil {
		return nil, err
	}
	extensions := parser.CommonExtensions | parser.AutoHeadingIDs
	p := parser.NewWithExtensions(extensions)
	return markdown.ToHTML(src, p, nil), nil
}

func (s *Server) handleHelp(w http.ResponseWriter, r *http.Request) {
	s.render(w, http.StatusOK, helpPage(s.help))
}
