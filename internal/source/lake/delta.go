package lake

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
)

const logDirName = "_delta_log"

// errNoTable reports a table directory that does not exist.
var errNoTable = errors.New("table not found")

// deltaAction is one line of a commit file. Only file membership matters here.
type deltaAction struct {
	Add    *deltaFile `json:"add"`
	Remove *deltaFile `json:"remove"`
}

type deltaFile struct {
	Path string `json:"path"`
}

// activeFiles lists the data files making up the current version of the table at
// dir. A directory with a transaction log is resolved by replaying its commits in
// version order; one without is read as every parquet file under it.
func activeFiles(dir string) ([]string, error) {
	info, err := os.Stat(dir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%s: %w", dir, errNoTable)
	}
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s is not a directory", dir)
	}

	logDir := filepath.Join(dir, logDirName)
	if _, err := os.Stat(logDir); errors.Is(err, fs.ErrNotExist) {
		return globParquet(dir)
	}
	return replayLog(dir, logDir)
}

func globParquet(dir string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() && d.Name() == logDirName {
			return filepath.SkipDir
		}
		if !d.IsDir() && strings.HasSuffix(d.Name(), ".parquet") {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list parquet files in %s: %w", dir, err)
	}
	slices.Sort(files)
	return files, nil
}

func replayLog(dir, logDir string) ([]string, error) {
	commits, err := filepath.Glob(filepath.Join(logDir, "*.json"))
	if err != nil {
		return nil, err
	}
	if len(commits) == 0 {
		return nil, fmt.Errorf("%s has no commits", logDir)
	}
	// Commit files are zero-padded versions, so lexical order is version order.
	slices.Sort(commits)
	if v, err := commitVersion(commits[0]); err != nil || v != 0 {
		return nil, fmt.Errorf("%s does not start at version 0; checkpointed logs are not supported", logDir)
	}

	active := make(map[string]struct{})
	for _, commit := range commits {
		if err := applyCommit(commit, active); err != nil {
			return nil, err
		}
	}

	files := make([]string, 0, len(active))
	for rel := range active {
		files = append(files, filepath.Join(dir, filepath.FromSlash(rel)))
	}
	slices.Sort(files)
	return files, nil
}

func commitVersion(path string) (int64, error) {
	return strconv.ParseInt(strings.TrimSuffix(filepath.Base(path), ".json"), 10, 64)
}

func applyCommit(path string, active map[string]struct{}) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open commit: %w", err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		var action deltaAction
		if err := json.Unmarshal([]byte(line), &action); err != nil {
			return fmt.Errorf("malformed action in %s: %w", filepath.Base(path), err)
		}
		switch {
		case action.Add != nil:
			rel, err := url.PathUnescape(action.Add.Path)
			if err != nil {
				return fmt.Errorf("bad add path %q: %w", action.Add.Path, err)
			}
			active[rel] = struct{}{}
		case action.Remove != nil:
			rel, err := url.PathUnescape(action.Remove.Path)
			if err != nil {
				return fmt.Errorf("bad remove path %q: %w", action.Remove.Path, err)
			}
			delete(active, rel)
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("failed to read %s: %w", filepath.Base(path), err)
	}
	return nil
}
