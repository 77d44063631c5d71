package config

import (
	"fmt"
	"strings"

	"emolabel/internal/diag"
	"emolabel/pkg/dataset"
	"emolabel/pkg/registry"
)

// Validate 对最小必要边界做静态校验。
func Validate(cfg Config) error {
	if !diag.ValidLevel(cfg.Logging.Level) {
		return fmt.Errorf("config: unknown logging.level %q", cfg.Logging.Level)
	}
	d := Defaults().Components
	if name := effName(cfg.Components.Reader, d.Reader); registry.Reader[name] == nil {
		return fmt.Errorf("config: reader %q not registered", name)
	}
	if name := effName(cfg.Components.Writer, d.Writer); registry.Writer[name] == nil {
		return fmt.Errorf("config: writer %q not registered", name)
	}
	if name := effName(cfg.Components.Codec, d.Codec); registry.Codec[name] == nil {
		return fmt.Errorf("config: codec %q not registered", name)
	}
	if name := effName(cfg.Components.Text, d.Text); registry.TextExporter[name] == nil {
		return fmt.Errorf("config: text exporter %q not registered", name)
	}
	if name := effName(cfg.Components.Sheet, d.Sheet); registry.SheetExporter[name] == nil {
		return fmt.Errorf("config: sheet exporter %q not registered", name)
	}
	return nil
}

// Assemble 依据配置经注册表构造组件，并组装为 dataset.Store。
func Assemble(cfg Config, log *diag.Logger, term *diag.Terminal) (*dataset.Store, error) {
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	d := Defaults().Components
	var c dataset.Components
	var err error
	if c.Reader, err = registry.Reader[effName(cfg.Components.Reader, d.Reader)](cfg.Options.Reader); err != nil {
		return nil, fmt.Errorf("config: reader options: %w", err)
	}
	if c.Writer, err = registry.Writer[effName(cfg.Components.Writer, d.Writer)](cfg.Options.Writer); err != nil {
		return nil, fmt.Errorf("config: writer options: %w", err)
	}
	if c.Codec, err = registry.Codec[effName(cfg.Components.Codec, d.Codec)](cfg.Options.Codec); err != nil {
		return nil, fmt.Errorf("config: codec options: %w", err)
	}
	if c.Text, err = registry.TextExporter[effName(cfg.Components.Text, d.Text)](cfg.Options.Text); err != nil {
		return nil, fmt.Errorf("config: text options: %w", err)
	}
	if c.Sheet, err = registry.SheetExporter[effName(cfg.Components.Sheet, d.Sheet)](cfg.Options.Sheet); err != nil {
		return nil, fmt.Errorf("config: sheet options: %w", err)
	}
	return dataset.New(c, dataset.WithLogger(log), dataset.WithTerminal(term)), nil
}

func effName(v, def string) string {
	if s := strings.TrimSpace(v); s != "" {
		return s
	}
	return def
}
