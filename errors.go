package main

import (
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
)

func (b *Blog) serverError(w http.ResponseWriter, r *http.Request, err error) {
	b.logger.Error().
		Err(err).
		Str("request_id", middleware.GetReqID(r.Context())).
		Str("method", r.Method).
		Str("path", r.URL.Path).
		Msg("internal server error")
	http.Error(w, "Internal Server Error", http.StatusInternalServerError)
}

func (b *Blog) clientError(w http.ResponseWriter, status int) {
	http.Error(w, http.StatusText(status), status)
}

func (b *Blog) notFound(w http.ResponseWriter) {
	b.clientError(w, http.StatusNotFound)
}

func (b *Blog) forbidden(w http.ResponseWriter, reason denyReason) {
	msg := http.StatusText(http.StatusForbidden)
	if reason != denyNone {
		msg += ": " + reason.String()
	}
	http.Error(w, msg, http.StatusForbidden)
}
