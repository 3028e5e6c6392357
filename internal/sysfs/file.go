// Copyright (C) 2024 Intel Corporation
// SPDX-License-Identifier: Apache-2.0

//go:build linux && amd64

// Package sysfs provides filesystem helpers shared by the topology and
// MSR leaves. Reads go through an afero.Fs so tests can substitute an
// in-memory filesystem instead of fixtures on disk.
package sysfs

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/spf13/afero"
)

// FS is the filesystem used for all sysfs and MSR device reads. Tests
// swap it for afero.NewMemMapFs().
var FS afero.Fs = afero.NewOsFs()

// ReadFile reads the contents of a file at the given path. If the file
// doesn't exist or can't be read, an error is returned.
func ReadFile(path string) ([]byte, error) {
	if err := CheckFile(path); err != nil {
		return nil, err
	}
	content, err := afero.ReadFile(FS, path)
	if err != nil {
		return nil, fmt.Errorf("error while reading file from path %q: %w", path, err)
	}
	return content, nil
}

// CheckFile returns nil if the given file path exists and is not a
// symlink. Otherwise, it returns an error.
func CheckFile(path string) error {
	if len(path) == 0 {
		return errors.New("file path is empty")
	}
	var fInfo os.FileInfo
	var err error
	if lstater, ok := FS.(afero.Lstater); ok {
		fInfo, _, err = lstater.LstatIfPossible(path)
	} else {
		fInfo, err = FS.Stat(path)
	}
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) || os.IsNotExist(err) {
			return fmt.Errorf("file %q does not exist", path)
		}
		return fmt.Errorf("could not get the info for file %q: %w", path, err)
	}
	if fInfo.Mode()&os.ModeSymlink != 0 {
		return fmt.Errorf("file %q is a symlink", path)
	}
	return nil
}

// FileExists checks if a file exists at the given path.
func FileExists(path string) (bool, error) {
	if len(path) == 0 {
		return false, errors.New("file path is empty")
	}
	_, err := FS.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) || os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}
