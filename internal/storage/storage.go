// Package storage хранит содержимое файлов пользователей (блобы).
// Блоб адресуется парой (owner, name); владелец не может выйти за пределы своего пространства.
package storage

import (
	"context"
	"errors"
	"io"
	"regexp"
	"strings"
	"unicode"
)

var (
	// ErrNotFound — блоба нет.
	ErrNotFound = errors.New("blob not found")
	// ErrInvalidName — имя файла или владельца небезопасно как компонент пути.
	ErrInvalidName = errors.New("invalid blob name")
)

// BlobStore — хранилище содержимого файлов.
type BlobStore interface {
	// Put записывает содержимое, перезаписывая блоб с тем же именем. Возвращает размер.
	Put(ctx context.Context, owner, name string, r io.Reader) (int64, error)
	// Open открывает блоб на чтение; ErrNotFound, если его нет.
	Open(ctx context.Context, owner, name string) (io.ReadCloser, error)
	// Remove удаляет блоб; отсутствие блоба не ошибка.
	Remove(ctx context.Context, owner, name string) error
	// Usage возвращает суммарный размер блобов владельца в байтах.
	Usage(ctx context.Context, owner string) (int64, error)
}

const maxNameLen = 255

var ownerRe = regexp.MustCompile(`^[A-Za-z0-9_-][A-Za-z0-9._-]{0,63}$`)

// ValidOwner проверяет имя владельца: оно же имя каталога.
func ValidOwner(owner string) bool {
	return ownerRe.MatchString(owner)
}

// CleanName нормализует имя файла и отклоняет всё, что может выйти из каталога владельца.
func CleanName(name string) (string, error) {
	name = strings.TrimSpace(name)
	switch {
	case name == "", name == ".", name == "..":
		return "", ErrInvalidName
	case len(name) > maxNameLen:
		return "", ErrInvalidName
	case strings.HasPrefix(name, "."):
		return "", ErrInvalidName
	case strings.ContainsAny(name, `/\`):
		return "", ErrInvalidName
	}
	for _, r := range name {
		if r == unicode.ReplacementChar || unicode.IsControl(r) {
			return "", ErrInvalidName
		}
	}
	return name, nil
}

func checkKey(owner, name string) error {
	if !ValidOwner(owner) {
		return ErrInvalidName
	}
	if _, err := CleanName(name); err != nil {
		return err
	}
	return nil
}
