package middleware

import (
	"net/http"
	"taskMap/internal/geo"
	"taskMap/internal/logger"

	"go.uber.org/zap"
)

const PositionHeader = "X-Geo-Position"

// Position кладёт в контекст позицию клиента из lat/lng или заголовка X-Geo-Position.
// Неразборчивая позиция просто игнорируется.
func Position(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var (
			p   geo.Point
			err error
			set bool
		)

		q := r.URL.Query()
		switch {
		case q.Get("lat") != "" || q.Get("lng") != "":
			p, err = geo.ParseLatLng(q.Get("lat"), q.Get("lng"))
			set = true
		case r.Header.Get(PositionHeader) != "":
			p, err = geo.ParsePosition(r.Header.Get(PositionHeader))
			set = true
		}

		if !set {
			next.ServeHTTP(w, r)
			return
		}
		if err != nil {
			logger.Debug("HTTP: Позиция клиента не разобрана",
				zap.Error(err),
				zap.String("request_id", GetRequestID(r.Context())))
			next.ServeHTTP(w, r)
			return
		}
		next.ServeHTTP(w, r.WithContext(geo.WithPosition(r.Context(), p)))
	})
}
