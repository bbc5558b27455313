// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"bytes"
	"debug/macho"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

type payloadKind string

const (
	payloadBinary     payloadKind = "binary"
	payloadCompose    payloadKind = "compose"
	payloadDockerfile payloadKind = "dockerfile"
	payloadScript     payloadKind = "script"
	payloadImage      payloadKind = "image"
)

// detectPayload classifies the payload of a run. Anything that is not a
// local file is taken to be an image reference.
func detectPayload(path string) (payloadKind, error) {
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return payloadImage, nil
	}
	if err != nil {
		return "", err
	}
	defer f.Close()

	base := strings.ToLower(filepath.Base(path))
	switch {
	case base == "dockerfile" || strings.HasSuffix(base, ".dockerfile"):
		return payloadDockerfile, nil
	case strings.HasSuffix(base, ".yml") || strings.HasSuffix(base, ".yaml"):
		return payloadCompose, nil
	}

	head := make([]byte, 512)
	n, err := io.ReadFull(f, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("failed to read payload: %w", err)
	}
	head = head[:n]
	if isExecutable(head) {
		return payloadBinary, nil
	}
	if bytes.HasPrefix(head, []byte("#!")) {
		return payloadScript, nil
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return "", err
	}
	if isCompose(f) {
		return payloadCompose, nil
	}
	return "", fmt.Errorf("unable to detect payload type of %s", path)
}

func isExecutable(head []byte) bool {
	if len(head) < 4 {
		return false
	}
	switch binary.LittleEndian.Uint32(head) {
	case 0x464C457F: // ELF
		return true
	case macho.Magic32, macho.Magic64, macho.MagicFat:
		return true
	}
	return false
}

// isCompose reports whether r is YAML with a top-level services key.
func isCompose(r io.Reader) bool {
	var doc struct {
		Services map[string]any `yaml:"services"`
	}
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		return false
	}
	return len(doc.Services) > 0
}
