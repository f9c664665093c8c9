package main

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/Seednode/brandhue/quiz"
	"github.com/julienschmidt/httprouter"
)

func writeJSON(cfg *Config, w http.ResponseWriter, status int, v any) (int, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return 0, err
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	securityHeaders(cfg, w)
	w.WriteHeader(status)

	return w.Write(append(data, '\n'))
}

// serveBrands lists the catalog, optionally narrowed with ?family=red|blue.
func serveBrands(cfg *Config, catalog *quiz.Catalog, errs chan<- error) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
		startTime := time.Now()

		family, err := quiz.ParseFamily(r.URL.Query().Get("family"))
		if err != nil {
			_, err = writeJSON(cfg, w, http.StatusBadRequest, map[string]string{"error": err.Error()})
			if err != nil {
				errs <- err
			}

			return
		}

		brands := catalog.Filter(func(b quiz.Brand) bool {
			return family.Contains(b.Primary)
		})
		if brands == nil {
			brands = []quiz.Brand{}
		}

		written, err := writeJSON(cfg, w, http.StatusOK, brands)
		if err != nil {
			errs <- err

			return
		}

		logf(cfg, "SERVE: Brand list (%d brands, %s) to %s in %s",
			len(brands),
			humanReadableSize(int64(written)),
			realIP(r),
			time.Since(startTime).Round(time.Microsecond),
		)
	}
}

func serveRules(cfg *Config, rules quiz.Rules, errs chan<- error) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
		_, err := writeJSON(cfg, w, http.StatusOK, rules)
		if err != nil {
			errs <- err

			return
		}
	}
}
