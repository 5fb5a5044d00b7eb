// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 aPlane Authors

package keystore

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/near-go/nearcli/internal/crypto"
	"github.com/near-go/nearcli/internal/fsutil"
	"github.com/near-go/nearcli/internal/near"
)

// FileStore keeps one JSON record per account at
// <root>/<network>/<account_id>.json.
type FileStore struct {
	root string
}

// NewFileStore creates a file-based store rooted at root (typically
// ~/.near-credentials).
func NewFileStore(root string) *FileStore {
	return &FileStore{root: root}
}

func (f *FileStore) Name() string { return "legacy keychain" }

// Root returns the credentials directory.
func (f *FileStore) Root() string { return f.root }

// Path returns where the account's record lives.
func (f *FileStore) Path(network string, accountID near.AccountID) string {
	return filepath.Join(f.root, network, accountID.String()+".json")
}

// Persist writes the record atomically with owner-only permissions.
func (f *FileStore) Persist(cred Credential) (string, error) {
	if cred.Network == "" || filepath.Base(cred.Network) != cred.Network {
		return "", &StoreError{Backend: f.Name(), Op: "save", Err: fmt.Errorf("invalid network name %q", cred.Network)}
	}
	path := f.Path(cred.Network, cred.AccountID)

	data, err := cred.marshal()
	if err != nil {
		return "", &StoreError{Backend: f.Name(), Op: "save", Err: err}
	}
	defer crypto.ZeroBytes(data)

	if err := fsutil.MkdirAll(filepath.Dir(path)); err != nil {
		return "", &StoreError{Backend: f.Name(), Op: "save", Err: fmt.Errorf("failed to create %s: %w", filepath.Dir(path), err)}
	}
	if err := fsutil.WriteFileAtomic(path, data); err != nil {
		return "", &StoreError{Backend: f.Name(), Op: "save", Err: fmt.Errorf("Failed to save a file with access key: %w", err)}
	}
	return fmt.Sprintf("The data for the access key is saved in a file %s", path), nil
}

// Load reads the account's record.
func (f *FileStore) Load(network string, accountID near.AccountID) (*Credential, error) {
	path := f.Path(network, accountID)
	data, err := os.ReadFile(path) // #nosec G304 - path is built from a validated account id
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, &StoreError{Backend: f.Name(), Op: "load", Err: fmt.Errorf("%w: %s", ErrNotFound, path)}
		}
		return nil, &StoreError{Backend: f.Name(), Op: "load", Err: err}
	}
	defer crypto.ZeroBytes(data)

	cred, err := unmarshalCredential(network, data)
	if err != nil {
		return nil, &StoreError{Backend: f.Name(), Op: "load", Err: fmt.Errorf("%s: %w", path, err)}
	}
	return cred, nil
}
