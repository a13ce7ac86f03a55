package database

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"

	"reg-go/internal/database/sqlc"
	"reg-go/internal/registry"
)

func (s *resourceStore) AddContent(ctx context.Context, r io.Reader) (int64, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return 0, fmt.Errorf("reading content: %w", err)
	}
	if data == nil {
		data = []byte{}
	}
	id, err := s.t.q.InsertContent(ctx, sqlc.InsertContentParams{TenantID: s.t.sess.TenantID, Data: data})
	if err != nil {
		return 0, registry.NewPersistenceError("add content", "", err)
	}
	return id, nil
}

func (s *resourceStore) DeleteContent(ctx context.Context, id int64) error {
	err := s.t.q.DeleteContent(ctx, sqlc.DeleteContentParams{TenantID: s.t.sess.TenantID, ID: id})
	if err != nil {
		return registry.NewPersistenceError("delete content", fmt.Sprintf("#%d", id), err)
	}
	return nil
}

func (s *resourceStore) ContentStream(ctx context.Context, id int64) (io.ReadCloser, error) {
	data, err := s.content(ctx, id)
	if err != nil || data == nil {
		return nil, err
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

// content returns the blob bytes, or nil when no blob has that ID.
func (s *resourceStore) content(ctx context.Context, id int64) ([]byte, error) {
	data, err := s.t.q.GetContent(ctx, sqlc.GetContentParams{TenantID: s.t.sess.TenantID, ID: id})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, registry.NewPersistenceError("get content", fmt.Sprintf("#%d", id), err)
	}
	if data == nil {
		data = []byte{}
	}
	return data, nil
}
