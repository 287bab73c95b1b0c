// Fuzz targets for the dataset decoders.
// Run with: go test -fuzz=FuzzParseJSON -fuzztime=30s ./pkg/hub/

package hub

import "testing"

// FuzzParseJSON looks for panics in the JSON decoder and the validation
// that follows it.
func FuzzParseJSON(f *testing.F) {
	f.Add([]byte(`{"hub":{"label":"H","radius":60},"nodes":[{"label":"a","severity":"Major","angle":0,"distance":185,"size":90}]}`))
	f.Add([]byte(`{"hub":{},"nodes":[{"label":"a"}]}`))
	f.Add([]byte(`{"nodes":[{"radius":-1,"distance":1e309}]}`))
	f.Add([]byte(`{}`))
	f.Add([]byte(`[]`))
	f.Add([]byte(`null`))
	f.Add([]byte(``))

	f.Fuzz(func(t *testing.T, data []byte) {
		ds, err := Parse(data, FormatJSON)
		if err != nil {
			return
		}
		_ = ds.Validate()
		_ = ds.Counts()
		_ = ds.Search("a")
	})
}

// FuzzParseYAML looks for panics in the YAML decoder.
func FuzzParseYAML(f *testing.F) {
	f.Add("hub:\n  label: H\nnodes:\n  - label: a\n    severity: Minor\n    angle: 10\n    distance: 100\n    size: 20\n")
	f.Add("nodes: [1, 2, 3]")
	f.Add("hub: null")
	f.Add("")

	f.Fuzz(func(t *testing.T, data string) {
		ds, err := Parse([]byte(data), FormatYAML)
		if err != nil {
			return
		}
		_ = ds.Validate()
	})
}

// FuzzParseTOML looks for panics in the TOML decoder.
func FuzzParseTOML(f *testing.F) {
	f.Add("[hub]\nlabel = \"H\"\n[[nodes]]\nlabel = \"a\"\nangle = 1.0\n")
	f.Add("nodes = 3")
	f.Add("")

	f.Fuzz(func(t *testing.T, data string) {
		ds, err := Parse([]byte(data), FormatTOML)
		if err != nil {
			return
		}
		_ = ds.Validate()
	})
}
