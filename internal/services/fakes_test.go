package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/openrelief/fieldsync/internal/media"
	"github.com/openrelief/fieldsync/internal/models"
	"github.com/openrelief/fieldsync/internal/remote"
)

// fakeRemote is an in-memory remote.Store with jsonb-style merge
// semantics and per-kind rejection for failure-isolation tests.
type fakeRemote struct {
	mu         sync.Mutex
	docs       map[string]remote.Document
	rejectKind map[models.Kind]bool
	upserts    int
	queries    int

	// queryGate, when set, blocks queries until the channel closes.
	queryGate chan struct{}
}

func newFakeRemote() *fakeRemote {
	return &fakeRemote{
		docs:       make(map[string]remote.Document),
		rejectKind: make(map[models.Kind]bool),
	}
}

func (f *fakeRemote) Upsert(_ context.Context, doc remote.Document) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.rejectKind[doc.Kind] {
		return errors.New("remote rejected write")
	}
	f.upserts++

	existing, ok := f.docs[doc.ID]
	if !ok {
		f.docs[doc.ID] = doc
		return nil
	}

	// Merge: fields absent from the new body stay untouched.
	var base, overlay map[string]any
	if err := json.Unmarshal(existing.Body, &base); err != nil {
		return fmt.Errorf("corrupt stored doc: %w", err)
	}
	if err := json.Unmarshal(doc.Body, &overlay); err != nil {
		return fmt.Errorf("bad upsert body: %w", err)
	}
	for k, v := range overlay {
		base[k] = v
	}
	merged, err := json.Marshal(base)
	if err != nil {
		return err
	}
	existing.Body = merged
	f.docs[doc.ID] = existing
	return nil
}

func (f *fakeRemote) QueryByOwner(_ context.Context, kind models.Kind, ownerID string) ([]remote.Document, error) {
	if f.queryGate != nil {
		<-f.queryGate
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queries++

	var out []remote.Document
	for _, doc := range f.docs {
		if doc.Kind == kind && doc.OwnerID == ownerID {
			out = append(out, doc)
		}
	}
	return out, nil
}

func (f *fakeRemote) QueryAll(_ context.Context, kind models.Kind) ([]remote.Document, error) {
	if f.queryGate != nil {
		<-f.queryGate
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queries++

	var out []remote.Document
	for _, doc := range f.docs {
		if doc.Kind == kind {
			out = append(out, doc)
		}
	}
	return out, nil
}

func (f *fakeRemote) seed(t *testing.T, kind models.Kind, id, ownerID string, v any) {
	t.Helper()
	body, err := json.Marshal(v)
	require.NoError(t, err)
	f.mu.Lock()
	defer f.mu.Unlock()
	f.docs[id] = remote.Document{ID: id, Kind: kind, OwnerID: ownerID, Body: body}
}

func (f *fakeRemote) upsertCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.upserts
}

func (f *fakeRemote) queryCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.queries
}

// fakePipeline records media operations in call order. No real files
// are touched: Compress only rewrites the path.
type fakePipeline struct {
	mu         sync.Mutex
	calls      []string
	failUpload bool
	uploadGate chan struct{}
}

func (f *fakePipeline) Compress(_ context.Context, localPath string, profile media.Profile) (string, error) {
	f.record("compress:" + string(profile.Quality))
	return localPath + "." + string(profile.Quality) + ".jpg", nil
}

func (f *fakePipeline) Upload(_ context.Context, _, objectKey string) (string, error) {
	if f.uploadGate != nil {
		<-f.uploadGate
	}
	if f.failUpload {
		f.record("upload-failed:" + objectKey)
		return "", errors.New("upload failed")
	}
	f.record("upload:" + objectKey)
	return "https://objects.example.com/evidence/" + objectKey, nil
}

func (f *fakePipeline) Delete(_ context.Context, objectKey string) error {
	f.record("delete:" + objectKey)
	return nil
}

func (f *fakePipeline) record(call string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call)
}

func (f *fakePipeline) callLog() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}
