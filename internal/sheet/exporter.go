package sheet

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"go.uber.org/zap"

	"github.com/dmhub/campaign-manager-api/internal/models"
)

// formGroup mirrors the JSON pdfcpu uses for form export and fill. Only the
// field types the character sheet uses are represented.
type formGroup struct {
	Forms []formFields `json:"forms"`
}

type formFields struct {
	TextFields []textField `json:"textfield,omitempty"`
	CheckBoxes []checkBox  `json:"checkbox,omitempty"`
}

type textField struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

type checkBox struct {
	Name  string `json:"name"`
	Value bool   `json:"value"`
}

// Exporter fills the PDF character sheet template with a character's values.
type Exporter struct {
	loader *Loader
	log    *zap.Logger
}

func NewExporter(loader *Loader, log *zap.Logger) *Exporter {
	return &Exporter{loader: loader, log: log}
}

// IntrospectSchema reads the template's form fields via pdfcpu's form export.
func IntrospectSchema(rs io.ReadSeeker) (Schema, error) {
	var buf bytes.Buffer
	if err := api.ExportFormJSON(rs, &buf, "", nil); err != nil {
		return nil, fmt.Errorf("export form schema: %w", err)
	}

	var group formGroup
	if err := json.Unmarshal(buf.Bytes(), &group); err != nil {
		return nil, fmt.Errorf("decode form schema: %w", err)
	}

	schema := make(Schema)
	for _, form := range group.Forms {
		for _, f := range form.TextFields {
			schema[f.Name] = FieldText
		}
		for _, f := range form.CheckBoxes {
			schema[f.Name] = FieldCheckbox
		}
	}
	return schema, nil
}

// Export writes the filled sheet PDF for ch to w.
func (e *Exporter) Export(ch *models.Character, w io.Writer) error {
	path, err := e.loader.Locate()
	if err != nil {
		return err
	}

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open template: %w", err)
	}
	defer f.Close()

	schema, err := IntrospectSchema(f)
	if err != nil {
		return err
	}

	values := MapCharacter(ch, schema)
	e.log.Debug("sheet fields mapped",
		zap.String("character_id", ch.ID),
		zap.String("template", path),
		zap.Int("schema_fields", len(schema)),
		zap.Int("text_fields", len(values.Text)),
		zap.Int("checkboxes", len(values.Checks)))

	var fields formFields
	for name, value := range values.Text {
		fields.TextFields = append(fields.TextFields, textField{Name: name, Value: value})
	}
	for name, checked := range values.Checks {
		fields.CheckBoxes = append(fields.CheckBoxes, checkBox{Name: name, Value: checked})
	}

	payload, err := json.Marshal(formGroup{Forms: []formFields{fields}})
	if err != nil {
		return fmt.Errorf("encode fill payload: %w", err)
	}

	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return fmt.Errorf("rewind template: %w", err)
	}
	if err := api.FillForm(f, bytes.NewReader(payload), w, nil); err != nil {
		return fmt.Errorf("fill form: %w", err)
	}
	return nil
}

// Filename is the download name for a character's sheet.
func Filename(ch *models.Character) string {
	name := ch.CharacterName
	if name == "" {
		name = "Character"
	}
	return name + "_Sheet.pdf"
}
