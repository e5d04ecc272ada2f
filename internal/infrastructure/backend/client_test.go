package backend_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/aviation-inventory/internal/application/dto"
	"github.com/jhoicas/aviation-inventory/internal/domain"
	"github.com/jhoicas/aviation-inventory/internal/domain/entity"
	"github.com/jhoicas/aviation-inventory/internal/infrastructure/backend"
)

type fakeBackend struct {
	mu        sync.Mutex
	inventory []dto.PartDTO
	posted    [][]dto.PartDTO
	auth      string
	status    int
	delay     time.Duration
}

func (f *fakeBackend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	f.auth = r.Header.Get("Authorization")
	f.mu.Unlock()
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-r.Context().Done():
			return
		}
	}
	if f.status != 0 {
		http.Error(w, "db caída", f.status)
		return
	}
	switch r.Method {
	case http.MethodGet:
		_ = json.NewEncoder(w).Encode(f.inventory)
	case http.MethodPost:
		var body []dto.PartDTO
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		f.mu.Lock()
		f.posted = append(f.posted, body)
		f.mu.Unlock()
		_ = json.NewEncoder(w).Encode(map[string]string{"message": "ok"})
	}
}

func (f *fakeBackend) lastAuth() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.auth
}

func (f *fakeBackend) saved() [][]dto.PartDTO {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.posted
}

func TestClient_FindPartYSave(t *testing.T) {
	fb := &fakeBackend{inventory: []dto.PartDTO{
		{ID: "P1", TagColor: "RED", Location: "HANGAR A", PN: "PN-1", RejectionReason: "grieta"},
		{ID: "P2", TagColor: "YELLOW", Location: "RACK-01"},
	}}
	srv := httptest.NewServer(fb)
	defer srv.Close()
	c := backend.NewClient(srv.URL+"/", "tok", time.Second)
	ctx := context.Background()

	p, err := c.FindPart(ctx, "P1")
	require.NoError(t, err)
	assert.Equal(t, entity.TagRejected, p.TagColor)
	assert.Equal(t, entity.RejectedDetails{RejectionReason: "grieta"}, p.Details)
	assert.Equal(t, "Bearer tok", fb.lastAuth())

	_, err = c.FindPart(ctx, "P9")
	assert.ErrorIs(t, err, domain.ErrPartNotFound)

	p.Location = "MRB"
	require.NoError(t, c.Save(ctx, p))
	posted := fb.saved()
	require.Len(t, posted, 1)
	require.Len(t, posted[0], 1)
	assert.Equal(t, "MRB", posted[0][0].Location)
	assert.Equal(t, "RED", posted[0][0].TagColor)
}

func TestClient_Errores(t *testing.T) {
	fb := &fakeBackend{status: http.StatusInternalServerError}
	srv := httptest.NewServer(fb)
	defer srv.Close()
	c := backend.NewClient(srv.URL, "", 0)
	part, _ := entity.NewPart("P1", entity.TagServiceable, "RACK-01", entity.PartInfo{}, nil, nil)

	err := c.Save(context.Background(), part)
	var se *backend.StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusInternalServerError, se.Status)
	assert.Equal(t, "db caída", se.Body)
	assert.Empty(t, fb.lastAuth())

	assert.ErrorIs(t, c.Save(context.Background(), nil), domain.ErrInvalidInput)
}

func TestClient_RespetaElContexto(t *testing.T) {
	fb := &fakeBackend{delay: time.Second}
	srv := httptest.NewServer(fb)
	defer srv.Close()
	c := backend.NewClient(srv.URL, "", 0)
	part, _ := entity.NewPart("P1", entity.TagServiceable, "RACK-01", entity.PartInfo{}, nil, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	err := c.Save(ctx, part)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
