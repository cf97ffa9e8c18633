package indicator

import (
	"time"

	"actled/internal/config"
	"actled/internal/counter"
	"actled/internal/led"
)

// BrightnessOptions locate the LED class attributes.
type BrightnessOptions struct {
	Path           string
	TriggerPath    string
	RestoreTrigger string
	OnValue        string
	OffValue       string
}

// GPIOOptions locate the GPIO line. Line is the kernel GPIO number.
type GPIOOptions struct {
	Root string
	Line int
}

// Options fully describe one indicator session.
type Options struct {
	Source            counter.Kind
	SourcePath        string
	ExcludeInterfaces []string
	Sink              led.Kind
	Brightness        BrightnessOptions
	GPIO              GPIOOptions
	Interval          time.Duration
}

// OptionsFromConfig resolves cfg into session options.
func OptionsFromConfig(cfg *config.Config) (Options, error) {
	opts := Options{
		Source:            cfg.SourceKind(),
		SourcePath:        cfg.SourcePath(),
		ExcludeInterfaces: cfg.Source.ExcludeInterfaces,
		Sink:              cfg.SinkKind(),
		Interval:          cfg.RefreshInterval(),
	}
	switch opts.Sink {
	case led.KindBrightness:
		opts.Brightness = BrightnessOptions{
			Path:           cfg.Brightness.Path,
			TriggerPath:    cfg.Brightness.TriggerPath,
			RestoreTrigger: cfg.Brightness.RestoreTrigger,
			OnValue:        cfg.Brightness.OnValue,
			OffValue:       cfg.Brightness.OffValue,
		}
	case led.KindGPIO:
		line, err := cfg.GPIOLine()
		if err != nil {
			return Options{}, err
		}
		opts.GPIO = GPIOOptions{Root: cfg.GPIO.SysfsRoot, Line: line}
	}
	return opts, nil
}
