// Package storage keeps one course workbook per chat in a flat directory.
package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

const ext = ".xlsx"

type ChatFiles struct {
	dir string
}

func NewChatFiles(dir string) (*ChatFiles, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}
	return &ChatFiles{dir: dir}, nil
}

func (s *ChatFiles) Dir() string {
	return s.dir
}

// Path returns where the chat's workbook lives, whether or not it exists
func (s *ChatFiles) Path(chatID int64) string {
	return filepath.Join(s.dir, strconv.FormatInt(chatID, 10)+ext)
}

func (s *ChatFiles) Exists(chatID int64) bool {
	info, err := os.Stat(s.Path(chatID))
	return err == nil && !info.IsDir()
}

// Save replaces the chat's workbook with the content of r. The file is
// written next to the target and renamed, so readers never see a partial file.
func (s *ChatFiles) Save(chatID int64, r io.Reader) (string, error) {
	tmp, err := os.CreateTemp(s.dir, ".upload-*")
	if err != nil {
		return "", fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, r); err != nil {
		tmp.Close()
		return "", fmt.Errorf("failed to save file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("failed to save file: %w", err)
	}

	path := s.Path(chatID)
	if err := os.Rename(tmp.Name(), path); err != nil {
		return "", fmt.Errorf("failed to replace %s: %w", path, err)
	}
	return path, nil
}

// Chats lists the chats that have a stored workbook, in ascending order.
// Files whose name is not a chat id are ignored.
func (s *ChatFiles) Chats() ([]int64, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read data directory: %w", err)
	}

	var chats []int64
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ext) {
			continue
		}
		id, err := strconv.ParseInt(strings.TrimSuffix(name, ext), 10, 64)
		if err != nil {
			continue
		}
		chats = append(chats, id)
	}
	sort.Slice(chats, func(i, j int) bool { return chats[i] < chats[j] })
	return chats, nil
}
