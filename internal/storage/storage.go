// Package storage keeps a file archive of catalog recipes, one JSON file
// per recipe version.
package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"menu-planner/internal/recipe"
)

const fileExt = ".json"

// RecipeStore archives recipes as <id>_<updated_at>.json files. Only the
// newest version of each recipe is kept.
type RecipeStore struct {
	dir string
}

// NewRecipeStore opens the archive in dir, creating the directory.
func NewRecipeStore(dir string) (*RecipeStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create archive directory %s: %w", dir, err)
	}
	return &RecipeStore{dir: dir}, nil
}

// versionStamp renders updatedAt without characters that are awkward in
// file names.
func versionStamp(updatedAt time.Time) string {
	return strings.ReplaceAll(updatedAt.UTC().Format(time.RFC3339), ":", "-")
}

func (s *RecipeStore) versionFile(id int64, updatedAt time.Time) string {
	return filepath.Join(s.dir, strconv.FormatInt(id, 10)+"_"+versionStamp(updatedAt)+fileExt)
}

// Save archives rec as its current version and drops any older file of the
// same recipe. The file is written under a temporary name first.
func (s *RecipeStore) Save(rec recipe.Recipe) error {
	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode recipe %d: %w", rec.ID, err)
	}
	if err := s.RemoveStaleVersions(rec.ID); err != nil {
		return err
	}

	target := s.versionFile(rec.ID, rec.UpdatedAt)
	tmp := target + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("failed to write recipe %d: %w", rec.ID, err)
	}
	if err := os.Rename(tmp, target); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("failed to store recipe %d: %w", rec.ID, err)
	}
	return nil
}

// Load reads one archived version.
func (s *RecipeStore) Load(id int64, updatedAt time.Time) (recipe.Recipe, error) {
	return readRecipe(s.versionFile(id, updatedAt))
}

// Exists reports whether that exact version is archived.
func (s *RecipeStore) Exists(id int64, updatedAt time.Time) bool {
	_, err := os.Stat(s.versionFile(id, updatedAt))
	return err == nil
}

// RemoveStaleVersions deletes every archived version of a recipe.
func (s *RecipeStore) RemoveStaleVersions(id int64) error {
	prefix := strconv.FormatInt(id, 10) + "_"
	names, err := s.archiveFiles()
	if err != nil {
		return err
	}
	for _, name := range names {
		if !strings.HasPrefix(name, prefix) {
			continue
		}
		if err := os.Remove(filepath.Join(s.dir, name)); err != nil {
			return fmt.Errorf("failed to remove old version %s: %w", name, err)
		}
	}
	return nil
}

// LoadAll reads every archived recipe in file name order.
func (s *RecipeStore) LoadAll() ([]recipe.Recipe, error) {
	names, err := s.archiveFiles()
	if err != nil {
		return nil, err
	}

	recipes := make([]recipe.Recipe, 0, len(names))
	for _, name := range names {
		rec, err := readRecipe(filepath.Join(s.dir, name))
		if err != nil {
			return nil, err
		}
		recipes = append(recipes, rec)
	}
	return recipes, nil
}

// archiveFiles lists the recipe files in the archive, sorted.
func (s *RecipeStore) archiveFiles() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to list archive %s: %w", s.dir, err)
	}
	var names []string
	for _, e := range entries {
		if e.Type().IsRegular() && strings.HasSuffix(e.Name(), fileExt) {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}

func readRecipe(path string) (recipe.Recipe, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return recipe.Recipe{}, fmt.Errorf("failed to read recipe file: %w", err)
	}

	var rec recipe.Recipe
	if err := json.Unmarshal(data, &rec); err != nil {
		return recipe.Recipe{}, fmt.Errorf("failed to decode %s: %w", filepath.Base(path), err)
	}
	return rec, nil
}
