package main

import (
	"path/filepath"
	"strings"

	"pluginhost/internal/backend"
)

// nativeLoader stands in for the cgo bridge a real embedding engine would
// write to negotiate the actual VST2/VST3 ABI against the binary at path
// (spec.md §1 Non-goals: "the actual VST2/VST3 plugin ABI... is treated as
// an external dependency"). It synthesizes a fixed-size backend.Fake
// (2 in, 2 out, 8 parameters, 4 programs) whose kind the file extension
// picks (".vst3" is V3, anything else V2), so this demo is runnable end to end without a real
// native plugin module on disk.
type nativeLoader struct{}

func (nativeLoader) Load(path string) (backend.Backend, backend.Info, error) {
	kind := backend.KindV2
	if strings.EqualFold(filepath.Ext(path), ".vst3") {
		kind = backend.KindV3
	}

	info := &backend.Info{
		Path:          path,
		Name:          strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)),
		Vendor:        "hostdemo",
		Category:      "Effect",
		Version:       "1.0.0",
		Kind:          kind,
		NumInputs:     2,
		NumOutputs:    2,
		NumParameters: 8,
		NumPrograms:   4,
		Capabilities: backend.Capabilities{
			HasEditor:       true,
			SinglePrecision: true,
		},
	}
	for i := 0; i < info.NumParameters; i++ {
		info.Parameters = append(info.Parameters, backend.ParamInfo{ID: int32(i), Name: paramName(i)})
	}

	fb := backend.NewFake(info)
	return fb, *info, nil
}

func paramName(i int) string {
	names := []string{"Gain", "Mix", "Tone", "Drive", "Attack", "Release", "Depth", "Rate"}
	if i < len(names) {
		return names[i]
	}
	return "Param"
}
