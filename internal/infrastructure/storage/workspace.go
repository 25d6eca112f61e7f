package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"cabinet-suite-core/internal/app/config"
)

// Sous-répertoires d'un cabinet
const (
	DirDocuments = "documents"
	DirExports   = "exports"
	DirImages    = "images"
)

// Workspace répertoire de base de chaque cabinet, dérivé de l'email de l'admin
type Workspace struct {
	baseDir string
}

func NewWorkspace(cfg *config.Config) *Workspace {
	return NewWorkspaceAt(cfg.Storage.BaseDir)
}

func NewWorkspaceAt(baseDir string) *Workspace {
	return &Workspace{baseDir: baseDir}
}

// SlugEmail rend un email utilisable comme nom de répertoire. Lettres, chiffres,
// '.', '-' et '@' sont conservés; tout autre octet devient _xx (hexadécimal),
// un point initial compris. Deux emails distincts donnent deux répertoires distincts.
func SlugEmail(email string) string {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return "_"
	}
	var b strings.Builder
	for i := 0; i < len(email); i++ {
		c := email[i]
		switch {
		case c >= 'a' && c <= 'z', c >= '0' && c <= '9', c == '-', c == '@':
			b.WriteByte(c)
		case c == '.' && i > 0:
			b.WriteByte(c)
		default:
			fmt.Fprintf(&b, "_%02x", c)
		}
	}
	return b.String()
}

// CabinetDir chemin du répertoire du cabinet
func (w *Workspace) CabinetDir(adminEmail string) string {
	return filepath.Join(w.baseDir, SlugEmail(adminEmail))
}

// Ensure crée le répertoire du cabinet et ses sous-répertoires
func (w *Workspace) Ensure(adminEmail string) error {
	for _, sub := range []string{DirDocuments, DirExports, DirImages} {
		if err := os.MkdirAll(filepath.Join(w.CabinetDir(adminEmail), sub), 0o750); err != nil {
			return fmt.Errorf("création %s: %w", sub, err)
		}
	}
	return nil
}

// Path chemin d'un fichier du cabinet; name est réduit à son nom de base
func (w *Workspace) Path(adminEmail, sub, name string) (string, error) {
	base := filepath.Base(filepath.Clean(name))
	if base == "." || base == ".." || base == string(filepath.Separator) {
		return "", fmt.Errorf("nom de fichier invalide: %q", name)
	}

	dir := filepath.Join(w.CabinetDir(adminEmail), filepath.Clean(sub))
	if !strings.HasPrefix(dir, w.CabinetDir(adminEmail)) {
		return "", fmt.Errorf("sous-répertoire invalide: %q", sub)
	}
	return filepath.Join(dir, base), nil
}

// Save écrit data dans le répertoire du cabinet et retourne le chemin complet
func (w *Workspace) Save(adminEmail, sub, name string, data []byte) (string, error) {
	path, err := w.Path(adminEmail, sub, name)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return "", fmt.Errorf("création répertoire: %w", err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o640); err != nil {
		return "", fmt.Errorf("écriture fichier: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return "", fmt.Errorf("finalisation fichier: %w", err)
	}
	return path, nil
}

// CleanOlderThan supprime, dans chaque cabinet, les fichiers de sub plus vieux que maxAge
func (w *Workspace) CleanOlderThan(sub string, maxAge time.Duration, now time.Time) (int, error) {
	cabinets, err := os.ReadDir(w.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, err
	}

	removed := 0
	for _, cabinet := range cabinets {
		if !cabinet.IsDir() {
			continue
		}
		dir := filepath.Join(w.baseDir, cabinet.Name(), sub)
		entries, err := os.ReadDir(dir)
		if err != nil {
			continue
		}
		for _, entry := range entries {
			if entry.IsDir() {
				continue
			}
			info, err := entry.Info()
			if err != nil {
				continue
			}
			if now.Sub(info.ModTime()) > maxAge {
				if err := os.Remove(filepath.Join(dir, entry.Name())); err == nil {
					removed++
				}
			}
		}
	}
	return removed, nil
}
