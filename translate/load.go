package translate

import (
	"context"
	"fmt"
	"io/fs"
	"maps"
	"path"
	"strings"

	"golang.org/x/sync/errgroup"
	"golang.org/x/text/language"
)

// maxParallelLoads bounds the number of catalog files parsed at once.
const maxParallelLoads = 8

// LoadFS returns a catalog with the messages of the YAML files in dir. Each
// file is named after its locale: "en.yaml", "pt-BR.yml". Files are parsed
// concurrently.
func LoadFS(ctx context.Context, fsys fs.FS, dir string, opts ...Option) (*Catalog, error) {
	c := New(opts...)
	if err := c.ReloadFS(ctx, fsys, dir); err != nil {
		return nil, err
	}
	return c, nil
}

// ReloadFS replaces the catalog messages with the files in dir. The catalog
// is left untouched when any file fails to load.
func (c *Catalog) ReloadFS(ctx context.Context, fsys fs.FS, dir string) error {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return fmt.Errorf("translate: read %s: %w", dir, err)
	}
	type file struct {
		name string
		tag  language.Tag
	}
	var files []file
	for _, e := range entries {
		tag, ok := localeOf(e)
		if !ok {
			continue
		}
		files = append(files, file{name: path.Join(dir, e.Name()), tag: tag})
	}

	results := make([]map[string]string, len(files))
	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(maxParallelLoads)
	for i, f := range files {
		eg.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			r, err := fsys.Open(f.name)
			if err != nil {
				return fmt.Errorf("translate: %w", err)
			}
			defer r.Close()
			m, err := decode(r)
			if err != nil {
				return fmt.Errorf("translate: %s: %w", f.name, err)
			}
			results[i] = m
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return err
	}

	messages := make(map[language.Tag]map[string]string, len(files))
	for i, f := range files {
		if m, ok := messages[f.tag]; ok {
			// en.yaml and en.yml both present.
			maps.Copy(m, results[i])
			continue
		}
		messages[f.tag] = results[i]
	}
	c.replace(messages)
	c.logger.Debug("translate: catalog loaded", "dir", dir, "locales", len(messages))
	return nil
}

// localeOf returns the locale named by a catalog file.
func localeOf(e fs.DirEntry) (language.Tag, bool) {
	if e.IsDir() {
		return language.Und, false
	}
	ext := path.Ext(e.Name())
	if ext != ".yaml" && ext != ".yml" {
		return language.Und, false
	}
	tag, err := language.Parse(strings.TrimSuffix(e.Name(), ext))
	if err != nil {
		return language.Und, false
	}
	return tag, true
}
