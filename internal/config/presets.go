package config

func preset(material string, mutate func(*Config)) *Config {
	cfg, err := MaterialConfig(material, DefaultQ)
	if err != nil {
		panic(err)
	}
	if mutate != nil {
		mutate(cfg)
	}
	return cfg
}

var Presets = map[string]map[string]*Config{
	"copper": {
		"default": preset("copper", nil),
		"quick": preset("copper", func(c *Config) {
			c.TMax = 1.0
			c.NPackets = 200
			c.OutputInterval = 25
		}),
		"high-load": preset("copper", func(c *Config) {
			c.Q = 40
		}),
		"still-air": preset("copper", func(c *Config) {
			c.Convection = 0.001
		}),
	},
	"silver": {
		"default": preset("silver", nil),
		"high-load": preset("silver", func(c *Config) {
			c.Q = 40
		}),
	},
	"aluminum": {
		"default": preset("aluminum", nil),
	},
	"steel_carbon": {
		"default": preset("steel_carbon", nil),
		"long": preset("steel_carbon", func(c *Config) {
			c.TMax = 10.0
		}),
	},
	"steel_stainless": {
		"default": preset("steel_stainless", nil),
	},
}

func GetPreset(material, name string) *Config {
	materialPresets, ok := Presets[material]
	if !ok {
		return nil
	}
	cfg, ok := materialPresets[name]
	if !ok {
		return nil
	}
	return cfg
}

func ListPresets(material string) []string {
	materialPresets, ok := Presets[material]
	if !ok {
		return nil
	}
	names := make([]string, 0, len(materialPresets))
	for name := range materialPresets {
		names = append(names, name)
	}
	return names
}
