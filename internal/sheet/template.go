package sheet

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// DefaultTemplateName is the fillable 5E sheet shipped with the service.
const DefaultTemplateName = "TWC-DnD-5E-Character-Sheet-v1.6.pdf"

// TemplateUnavailableError reports that the sheet template could not be found
// in any of the configured locations. Attempted lists every path tried so the
// operator can see where to put the file.
type TemplateUnavailableError struct {
	Attempted []string
	Err       error
}

func (e *TemplateUnavailableError) Error() string {
	return fmt.Sprintf("sheet template not found, tried: %s", strings.Join(e.Attempted, ", "))
}

func (e *TemplateUnavailableError) Unwrap() error {
	return e.Err
}

// Loader locates the sheet template on disk, probing each configured
// directory in order.
type Loader struct {
	dirs []string
	name string
}

func NewLoader(dirs []string, name string) *Loader {
	if name == "" {
		name = DefaultTemplateName
	}
	return &Loader{dirs: dirs, name: name}
}

// Locate returns the path of the first directory that holds the template.
func (l *Loader) Locate() (string, error) {
	attempted := make([]string, 0, len(l.dirs))
	var lastErr error
	for _, dir := range l.dirs {
		p := filepath.Join(dir, l.name)
		attempted = append(attempted, p)
		info, err := os.Stat(p)
		if err != nil {
			lastErr = err
			continue
		}
		if info.IsDir() {
			continue
		}
		return p, nil
	}
	return "", &TemplateUnavailableError{Attempted: attempted, Err: lastErr}
}
