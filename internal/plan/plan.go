package plan

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	gherkin "github.com/cucumber/gherkin/go/v26"
	messages "github.com/cucumber/messages/go/v21"

	"github.com/shaiso/flatware/internal/domain"
)

const featureExt = ".feature"

// Plan — работа одного прогона.
type Plan struct {
	// Features — feature-файлы в порядке обхода.
	Features []string `yaml:"features"`

	// Expected — идентификаторы всех сценариев, без повторов.
	Expected []string `yaml:"expected"`

	// Pickles, Steps — число выполняемых сценариев (с повторами
	// идентификаторов) и их шагов. Ноль — неизвестно.
	Pickles int `yaml:"pickles,omitempty"`
	Steps   int `yaml:"steps,omitempty"`
}

// SinkMessages — сколько сообщений sink получит за полный прогон:
// по одному на шаг и на завершение сценария. Ноль — неизвестно.
func (p *Plan) SinkMessages() int {
	return p.Steps + p.Pickles
}

// Discover обходит paths (файлы и каталоги) и собирает Plan.
//
// Идентификатор сценария строится из пути к файлу в том виде, в каком он
// найден обходом, поэтому воркеры должны получить те же пути.
func Discover(paths []string) (*Plan, error) {
	files, err := featureFiles(paths)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoFeatures, strings.Join(paths, ", "))
	}

	p := &Plan{Features: files}
	seen := make(map[string]struct{})

	for _, file := range files {
		ids, steps, err := scenarioIDs(file)
		if err != nil {
			return nil, err
		}
		p.Pickles += len(ids)
		p.Steps += steps
		for _, id := range ids {
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}
			p.Expected = append(p.Expected, id)
		}
	}

	return p, nil
}

// featureFiles раскрывает каталоги в список *.feature файлов.
func featureFiles(paths []string) ([]string, error) {
	var files []string

	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", path, err)
		}

		if !info.IsDir() {
			files = append(files, path)
			continue
		}

		err = filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !d.IsDir() && filepath.Ext(p) == featureExt {
				files = append(files, p)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("walk %s: %w", path, err)
		}
	}

	return files, nil
}

// scenarioIDs разбирает файл и возвращает идентификаторы его pickle'ов
// и общее число их шагов.
func scenarioIDs(path string) ([]string, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	newID := (&messages.Incrementing{}).NewId

	doc, err := gherkin.ParseGherkinDocument(f, newID)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %s: %v", ErrParseFeature, path, err)
	}

	pickles := gherkin.Pickles(*doc, path, newID)
	ids := make([]string, 0, len(pickles))
	steps := 0
	for _, p := range pickles {
		ids = append(ids, domain.ScenarioID(p.Uri, p.Name))
		steps += len(p.Steps)
	}
	return ids, steps, nil
}

// Split раздаёт items n воркерам по кругу.
// Части не пересекаются; часть может оказаться пустой.
func Split(items []string, n int) ([][]string, error) {
	if n <= 0 {
		return nil, ErrInvalidWorkers
	}

	slices := make([][]string, n)
	for i, item := range items {
		slices[i%n] = append(slices[i%n], item)
	}
	return slices, nil
}
