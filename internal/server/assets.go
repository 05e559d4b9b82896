package server

import (
	"embed"
	"io/fs"
	"net/http"
)

// Embedded dashboard UI.
//
//go:embed assets
var assetsFS embed.FS

func assetHandler() http.Handler {
	sub, err := fs.Sub(assetsFS, "assets")
	if err != nil {
		// The embed is part of the binary; a bad sub path is a build defect.
		panic(err)
	}
	return http.FileServer(http.FS(sub))
}
