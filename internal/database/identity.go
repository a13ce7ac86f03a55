package database

import (
	"context"

	"reg-go/internal/registry"
)

// ResourceID resolves path, trying the collection interpretation first.
func (s *resourceStore) ResourceID(ctx context.Context, path string) (*registry.ResourceID, error) {
	paths := s.t.Paths()
	id, err := paths.GetPathID(ctx, path)
	if err != nil {
		return nil, err
	}
	if id != registry.NotFoundPathID {
		return &registry.ResourceID{PathID: id, Collection: true, Path: path}, nil
	}
	return s.ResourceIDAs(ctx, path, false)
}

// ResourceIDAs resolves path as the given kind without probing the other one.
func (s *resourceStore) ResourceIDAs(ctx context.Context, path string, collection bool) (*registry.ResourceID, error) {
	paths := s.t.Paths()
	if collection {
		id, err := paths.GetPathID(ctx, path)
		if err != nil {
			return nil, err
		}
		if id == registry.NotFoundPathID {
			return nil, nil
		}
		return &registry.ResourceID{PathID: id, Collection: true, Path: path}, nil
	}

	if path == registry.RootPath {
		return nil, nil
	}
	parent, name := registry.SplitPath(path)
	parentID, err := paths.GetPathID(ctx, parent)
	if err != nil {
		return nil, err
	}
	if parentID == registry.NotFoundPathID {
		return nil, nil
	}
	return &registry.ResourceID{PathID: parentID, Name: name, Path: path}, nil
}

func (s *resourceStore) ResourceExists(ctx context.Context, path string) (bool, error) {
	ok, err := s.ResourceExistsAs(ctx, path, true)
	if err != nil || ok {
		return ok, err
	}
	return s.ResourceExistsAs(ctx, path, false)
}

func (s *resourceStore) ResourceExistsAs(ctx context.Context, path string, collection bool) (bool, error) {
	id, err := s.ResourceIDAs(ctx, path, collection)
	if err != nil || id == nil {
		return false, err
	}
	return s.ResourceIDExists(ctx, id)
}

func (s *resourceStore) ResourceIDExists(ctx context.Context, id *registry.ResourceID) (bool, error) {
	v, err := s.Version(ctx, id)
	if err != nil {
		return false, err
	}
	return v != registry.NotFoundVersion, nil
}
