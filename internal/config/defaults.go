package config

const (
	defaultSourceKind          = "disk"
	defaultSinkKind            = "brightness"
	defaultBrightnessPath      = "/sys/class/leds/led0/brightness"
	defaultTriggerPath         = "/sys/class/leds/led0/trigger"
	defaultRestoreTrigger      = "mmc0"
	defaultOnValue             = "255"
	defaultOffValue            = "0"
	defaultGPIOScheme          = "wiringpi"
	defaultGPIORoot            = "/sys/class/gpio"
	defaultRefreshMS           = 20
	defaultStateDir            = "~/.local/state/actled"
	defaultReadyTimeoutSeconds = 10
	defaultStopTimeoutSeconds  = 10
	defaultLogFormat           = "console"
	defaultLogLevel            = "info"
	defaultLogDir              = "~/.local/state/actled/logs"
	defaultLogRetentionDays    = 14

	// AutoPin selects the pin conventionally paired with the source.
	AutoPin = -1
	// DiskPin and NetPin are the wiringPi pins used when gpio.pin is AutoPin.
	DiskPin = 10
	NetPin  = 11

	// MinRefreshMS is the shortest accepted polling interval.
	MinRefreshMS     = 10
	DefaultRefreshMS = defaultRefreshMS
)

// Default returns a Config populated with defaults.
func Default() Config {
	return Config{
		Source: Source{
			Kind:              defaultSourceKind,
			ExcludeInterfaces: []string{"lo"},
		},
		Sink: Sink{Kind: defaultSinkKind},
		Brightness: Brightness{
			Path:           defaultBrightnessPath,
			TriggerPath:    defaultTriggerPath,
			RestoreTrigger: defaultRestoreTrigger,
			OnValue:        defaultOnValue,
			OffValue:       defaultOffValue,
		},
		GPIO: GPIO{
			Pin:       AutoPin,
			Scheme:    defaultGPIOScheme,
			SysfsRoot: defaultGPIORoot,
		},
		Daemon: Daemon{
			RefreshMS:           defaultRefreshMS,
			StateDir:            defaultStateDir,
			ReadyTimeoutSeconds: defaultReadyTimeoutSeconds,
			StopTimeoutSeconds:  defaultStopTimeoutSeconds,
		},
		Hotplug: Hotplug{Enabled: true},
		Logging: Logging{
			Format:        defaultLogFormat,
			Level:         defaultLogLevel,
			RetentionDays: defaultLogRetentionDays,
			LogDir:        defaultLogDir,
		},
	}
}
