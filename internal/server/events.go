package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"calendar-api/internal/calendar"
	"calendar-api/internal/store"
)

// maxBodyBytes caps request bodies for the event write endpoints.
const maxBodyBytes = 1 << 20

// decodeDocument reads the request body as a JSON object. An empty body is
// an empty document. Any client-supplied _id is dropped.
func decodeDocument(r *http.Request) (store.Document, error) {
	raw, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}

	doc := store.Document{}
	if len(bytes.TrimSpace(raw)) == 0 {
		return doc, nil
	}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("decode body: %w", err)
	}
	if doc == nil {
		return nil, errors.New("decode body: null document")
	}
	delete(doc, store.IDField)
	return doc, nil
}

// listEvents handles GET /api/events.
func (s *Server) listEvents(w http.ResponseWriter, r *http.Request) {
	events, err := s.db.Collection(store.Events).Find(r.Context(), nil)
	if err != nil {
		fail(w, r, "Failed to fetch events", err)
		return
	}
	writeJSON(w, http.StatusOK, events)
}

// createEvent handles POST /api/events: the whole body plus createdAt is
// stored, then the stored document is read back by its new id.
func (s *Server) createEvent(w http.ResponseWriter, r *http.Request) {
	const msg = "Failed to create event"

	doc, err := decodeDocument(r)
	if err != nil {
		fail(w, r, msg, err)
		return
	}
	doc["createdAt"] = s.now().UTC()

	events := s.db.Collection(store.Events)
	id, err := events.InsertOne(r.Context(), doc)
	if err != nil {
		fail(w, r, msg, err)
		return
	}

	created, err := events.FindOne(r.Context(), store.Filter{store.IDField: id})
	if err != nil {
		fail(w, r, msg, err)
		return
	}

	GetMetrics().RecordEventWrite("create")
	writeJSON(w, http.StatusOK, created.OrElse(nil))
}

// updateEvent handles PUT /api/events/{id}. The body is merged into the
// stored event; a missing event yields null.
func (s *Server) updateEvent(w http.ResponseWriter, r *http.Request) {
	const msg = "Failed to update event"
	id := r.PathValue("id")

	doc, err := decodeDocument(r)
	if err != nil {
		fail(w, r, msg, err)
		return
	}
	doc["updatedAt"] = s.now().UTC()

	events := s.db.Collection(store.Events)
	if err := events.UpdateByID(r.Context(), id, doc); err != nil {
		fail(w, r, msg, err)
		return
	}

	updated, err := events.FindOne(r.Context(), store.Filter{store.IDField: id})
	if err != nil {
		fail(w, r, msg, err)
		return
	}

	GetMetrics().RecordEventWrite("update")
	writeJSON(w, http.StatusOK, updated.OrElse(nil))
}

// deleteEvent handles DELETE /api/events/{id}. The id is echoed whether or
// not a document was removed.
func (s *Server) deleteEvent(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	if err := s.db.Collection(store.Events).DeleteByID(r.Context(), id); err != nil {
		fail(w, r, "Failed to delete event", err)
		return
	}

	GetMetrics().RecordEventWrite("delete")
	writeJSON(w, http.StatusOK, map[string]string{"id": id})
}

// exportEvents handles GET /api/events.ics.
func (s *Server) exportEvents(w http.ResponseWriter, r *http.Request) {
	const msg = "Failed to export events"

	events, err := s.db.Collection(store.Events).Find(r.Context(), nil)
	if err != nil {
		fail(w, r, msg, err)
		return
	}

	var buf bytes.Buffer
	if err := calendar.WriteICS(&buf, events, s.now()); err != nil {
		fail(w, r, msg, err)
		return
	}

	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", `inline; filename="events.ics"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}
