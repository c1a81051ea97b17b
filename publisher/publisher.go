package publisher

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"

	"seo_article_generator/apperr"
	"seo_article_generator/generator"
	"seo_article_generator/logging"
)

// Paths locates the files the pipeline reads and writes.
type Paths struct {
	Input    string
	Template string
	Article  string
	Preview  string
}

// ArticleGenerator produces the raw, unsanitized article for a source text.
type ArticleGenerator interface {
	Generate(ctx context.Context, source string) (string, error)
}

// Publisher orchestrates reading the source, generation, cleanup, template
// injection and persistence.
type Publisher struct {
	paths       Paths
	placeholder string
	gen         ArticleGenerator
	logger      *logging.Logger
}

func New(paths Paths, placeholder string, gen ArticleGenerator, logger *logging.Logger) (*Publisher, error) {
	if gen == nil {
		return nil, errors.New("article generator required")
	}
	if paths.Input == "" || paths.Template == "" || paths.Article == "" || paths.Preview == "" {
		return nil, apperr.New(apperr.KindConfiguration, "publisher.New", "input, template, article and preview paths are required")
	}
	if placeholder == "" {
		return nil, apperr.New(apperr.KindConfiguration, "publisher.New", "placeholder marker is required")
	}
	if logger == nil {
		logger = logging.Nop()
	}
	return &Publisher{paths: paths, placeholder: placeholder, gen: gen, logger: logger}, nil
}

// PublishArticle runs the pipeline once and returns the rendered preview.
// Nothing is written unless every step before persistence succeeds.
func (p *Publisher) PublishArticle(ctx context.Context) (string, error) {
	source, err := readSource(p.paths.Input)
	if err != nil {
		return "", err
	}
	p.logger.Info("source loaded", "path", p.paths.Input, "bytes", len(source))

	tmpl, err := p.loadTemplate()
	if err != nil {
		return "", err
	}

	raw, err := p.gen.Generate(ctx, source)
	if err != nil {
		return "", err
	}
	article := generator.StripNonHTMLLines(raw)
	p.logger.Info("article generated", "raw_bytes", len(raw), "article_bytes", len(article))

	preview, err := InjectArticle(tmpl, p.placeholder, article)
	if err != nil {
		return "", err
	}

	if err := p.persist(article, preview); err != nil {
		return "", err
	}
	p.logger.Info("article published", "article", p.paths.Article, "preview", p.paths.Preview)
	return preview, nil
}

func readSource(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", apperr.Wrapf(apperr.KindNotFound, "publisher.readSource", err, "text file %s not found", path)
		}
		return "", apperr.Wrap(apperr.KindUnexpected, "publisher.readSource", err)
	}
	return string(data), nil
}

// loadTemplate reads the template and checks the marker up front so a bad
// template fails before any model call is paid for.
func (p *Publisher) loadTemplate() (string, error) {
	data, err := os.ReadFile(p.paths.Template)
	if err != nil {
		return "", apperr.Wrapf(apperr.KindConfiguration, "publisher.loadTemplate", err, "template %s unreadable", p.paths.Template)
	}
	tmpl := string(data)
	if _, err := locateMarker(tmpl, p.placeholder); err != nil {
		return "", err
	}
	return tmpl, nil
}

// persist writes both files while holding an exclusive lock next to the
// article file, so concurrent pipelines replace the pair one at a time.
func (p *Publisher) persist(article, preview string) error {
	if err := os.MkdirAll(filepath.Dir(p.paths.Article), 0o755); err != nil {
		return apperr.Wrap(apperr.KindUnexpected, "publisher.persist", err)
	}
	lock := flock.New(p.paths.Article + ".lock")
	if err := lock.Lock(); err != nil {
		return apperr.Wrapf(apperr.KindUnexpected, "publisher.persist", err, "lock %s", lock.Path())
	}
	defer func() {
		if err := lock.Unlock(); err != nil {
			p.logger.Warn("failed to release output lock", "path", lock.Path(), "error", err.Error())
		}
	}()

	if err := writeFileAtomic(p.paths.Article, article); err != nil {
		return apperr.Wrap(apperr.KindUnexpected, "publisher.persist", err)
	}
	if err := writeFileAtomic(p.paths.Preview, preview); err != nil {
		return apperr.Wrap(apperr.KindUnexpected, "publisher.persist", err)
	}
	return nil
}

func writeFileAtomic(path, content string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	if _, err := tmp.WriteString(content); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		os.Remove(tmpName)
		return err
	}
	return os.Rename(tmpName, path)
}
