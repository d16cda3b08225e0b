package app

import (
	"log"
	"mime"
)

// Types served from embedded assets or named in download headers. Minimal
// container images ship without /etc/mime.types.
var portalMimeTypes = map[string]string{
	".css":  "text/css; charset=utf-8",
	".ics":  "text/calendar; charset=utf-8",
	".pdf":  "application/pdf",
	".xlsx": "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
}

func init() {
	for ext, typ := range portalMimeTypes {
		registerMimeType(ext, typ)
	}
}

func registerMimeType(ext, typ string) {
	if mime.TypeByExtension(ext) != "" {
		return
	}
	if err := mime.AddExtensionType(ext, typ); err != nil {
		log.Printf("app: register MIME type for %s: %v", ext, err)
	}
}
