package server

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"versiond/codec"
	"versiond/internal/resource"
	"versiond/transform"
)

const (
	actionCreated = "created"
	actionUpdated = "updated"
)

func (h *handlers) list(w http.ResponseWriter, r *http.Request) {
	res := resourceFromContext(r.Context())
	c, err := h.responseCodec(r, res)
	if err != nil {
		writeError(w, r, http.StatusNotAcceptable, err)
		return
	}
	entities, err := res.Store.List()
	if err != nil {
		writeError(w, r, http.StatusInternalServerError, err)
		return
	}
	items := make([]any, 0, len(entities))
	for _, e := range entities {
		p, err := res.Serializer.ToRepresentation(r.Context(), e)
		if err != nil {
			writeError(w, r, http.StatusInternalServerError, err)
			return
		}
		items = append(items, p)
	}
	h.write(w, r, c, http.StatusOK, transform.PayloadOf("count", len(items), "items", items))
}

func (h *handlers) get(w http.ResponseWriter, r *http.Request) {
	res := resourceFromContext(r.Context())
	c, err := h.responseCodec(r, res)
	if err != nil {
		writeError(w, r, http.StatusNotAcceptable, err)
		return
	}
	entity, err := res.Store.Get(chi.URLParam(r, "id"))
	if err != nil {
		if res.Store.IsNotFound(err) {
			writeError(w, r, http.StatusNotFound, err)
			return
		}
		writeError(w, r, http.StatusInternalServerError, err)
		return
	}
	h.represent(w, r, c, res, http.StatusOK, entity)
}

func (h *handlers) create(w http.ResponseWriter, r *http.Request) {
	h.store(w, r, func(res *resource.Resource, p *transform.Payload) (any, error) {
		return res.Store.Create(p)
	}, actionCreated, http.StatusCreated)
}

func (h *handlers) update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	h.store(w, r, func(res *resource.Resource, p *transform.Payload) (any, error) {
		return res.Store.Update(id, p)
	}, actionUpdated, http.StatusOK)
}

// store upgrades the body, hands it to write, publishes the change and
// answers with the stored entity at the request's version.
func (h *handlers) store(w http.ResponseWriter, r *http.Request, write func(*resource.Resource, *transform.Payload) (any, error), action string, code int) {
	res := resourceFromContext(r.Context())
	c, err := h.responseCodec(r, res)
	if err != nil {
		writeError(w, r, http.StatusNotAcceptable, err)
		return
	}

	p, err := res.Parser.Parse(r.Context(), r.Body, r.Header.Get("Content-Type"))
	if err != nil {
		writeError(w, r, inboundStatus(err), err)
		return
	}
	entity, err := write(res, p)
	if err != nil {
		if res.Store.IsNotFound(err) {
			writeError(w, r, http.StatusNotFound, err)
			return
		}
		writeError(w, r, http.StatusBadRequest, err)
		return
	}
	if h.opts.Publisher != nil {
		// the write already happened; a lagging sink does not fail it
		_ = h.opts.Publisher.Publish(r.Context(), res, action, entity)
	}
	h.represent(w, r, c, res, code, entity)
}

func (h *handlers) represent(w http.ResponseWriter, r *http.Request, c codec.Codec, res *resource.Resource, code int, entity any) {
	p, err := res.Serializer.ToRepresentation(r.Context(), entity)
	if err != nil {
		writeError(w, r, http.StatusInternalServerError, err)
		return
	}
	h.write(w, r, c, code, p)
}

func (h *handlers) write(w http.ResponseWriter, r *http.Request, c codec.Codec, code int, p *transform.Payload) {
	var buf bytes.Buffer
	if err := c.Encode(&buf, p); err != nil {
		writeError(w, r, http.StatusInternalServerError, err)
		return
	}
	w.Header().Set("Content-Type", fmt.Sprintf("%s; %s=%s", c.MediaType(), versionParam, w.Header().Get(HeaderAPIVersion)))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(code)
	_, _ = w.Write(buf.Bytes())
}

// responseCodec picks the first Accept entry a codec serves. Without a
// usable Accept the resource's media type, then JSON, is used.
func (h *handlers) responseCodec(r *http.Request, res *resource.Resource) (codec.Codec, error) {
	accepts := splitAccept(r.Header.Get("Accept"))
	for _, a := range accepts {
		if c, err := h.opts.Codecs.Lookup(a); err == nil {
			return c, nil
		}
	}
	wildcard := len(accepts) == 0
	for _, a := range accepts {
		if mt, _, _ := parseMediaType(a); mt == "*/*" || mt == "application/*" {
			wildcard = true
		}
	}
	if !wildcard {
		return nil, fmt.Errorf("%w: %s", codec.ErrUnsupportedMediaType, r.Header.Get("Accept"))
	}
	if res.Spec.MediaType != "" {
		if c, err := h.opts.Codecs.Lookup(res.Spec.MediaType); err == nil {
			return c, nil
		}
	}
	return h.opts.Codecs.Lookup(codec.MediaTypeJSON)
}
