package config

import (
	"sort"

	"github.com/san-kum/clothsim/internal/cloth"
)

var Presets = map[string]*Scene{
	"pinned2": DefaultScene(),
	"pinned4": {
		Name: "pinned4",
		Cloth: ClothConfig{
			Width: 1, Height: 1, NumWidthPoints: 24, NumHeightPoints: 24, Thickness: 0.01,
			Orientation: "vertical",
			Pinned:      [][2]int{{0, 23}, {8, 23}, {15, 23}, {23, 23}},
		},
		Params:        cloth.DefaultParams(),
		Sim:           SimConfig{FPS: 90, Substeps: 30, Frames: 180},
		Accelerations: [][3]float64{{0, -9.8, 0}},
	},
	"sphere": {
		Name: "sphere",
		Cloth: ClothConfig{
			Width: 1, Height: 1, NumWidthPoints: 24, NumHeightPoints: 24, Thickness: 0.01,
			Orientation: "horizontal",
		},
		Params:        cloth.DefaultParams(),
		Sim:           SimConfig{FPS: 90, Substeps: 30, Frames: 240},
		Accelerations: [][3]float64{{0, -9.8, 0}},
		Colliders: []ColliderConfig{
			{Type: "sphere", Origin: [3]float64{0.5, 0.5, 0.5}, Radius: 0.25, Friction: 0.3},
		},
	},
	"plane": {
		Name: "plane",
		Cloth: ClothConfig{
			Width: 1, Height: 1, NumWidthPoints: 24, NumHeightPoints: 24, Thickness: 0.01,
			Orientation: "horizontal",
		},
		Params:        cloth.DefaultParams(),
		Sim:           SimConfig{FPS: 90, Substeps: 30, Frames: 180},
		Accelerations: [][3]float64{{0, -9.8, 0}},
		Colliders: []ColliderConfig{
			{Type: "plane", Point: [3]float64{0.5, 0, 0.5}, Normal: [3]float64{0, 1, 0}, Friction: 0.5},
		},
	},
	"selfcollision": {
		Name: "selfcollision",
		Cloth: ClothConfig{
			Width: 1, Height: 1, NumWidthPoints: 24, NumHeightPoints: 24, Thickness: 0.02,
			Orientation: "vertical", Seed: 1,
		},
		Params:        cloth.Params{Ks: 5000, Density: 1, Damping: 0.2, EnableStructural: true, EnableShearing: true, EnableBending: true},
		Sim:           SimConfig{FPS: 90, Substeps: 30, Frames: 300},
		Accelerations: [][3]float64{{0, -9.8, 0}},
		Colliders: []ColliderConfig{
			{Type: "plane", Point: [3]float64{0.5, -0.5, 0.5}, Normal: [3]float64{0, 1, 0}, Friction: 0.5},
		},
	},
}

// GetPreset returns a copy of the named preset, or nil.
func GetPreset(name string) *Scene {
	s, ok := Presets[name]
	if !ok {
		return nil
	}
	return s.Clone()
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
