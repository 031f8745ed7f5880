package services

import (
	"path/filepath"

	"github.com/karrick/godirwalk"
	"github.com/rs/zerolog/log"
	"github.com/valyala/fasthttp"
)

// NewStatic serves the front-end from root, falling back to index.html for
// unknown paths. The startup walk is a sanity census of the deployed assets.
func NewStatic(root string) fasthttp.RequestHandler {
	var assets int

	err := godirwalk.Walk(root, &godirwalk.Options{
		Callback: func(osPathname string, de *godirwalk.Dirent) error {
			if !de.IsDir() {
				assets++
			}
			return nil
		},
		Unsorted: true,
	})
	if err != nil {
		log.Warn().Err(err).Msgf("static root %s unavailable", root)
	} else {
		log.Info().Msgf("serving %d static assets from %s", assets, root)
	}

	fs := &fasthttp.FS{
		Root:       root,
		IndexNames: []string{"index.html"},
		Compress:   true,
		PathNotFound: func(ctx *fasthttp.RequestCtx) {
			fasthttp.ServeFile(ctx, filepath.Join(root, "index.html"))
		},
	}

	return fs.NewRequestHandler()
}
