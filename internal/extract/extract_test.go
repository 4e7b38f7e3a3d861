package extract_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/jpl-au/smartbar/internal/extract"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSource struct {
	meta  map[int64]map[string]any
	body  map[int64]string
	panic string // meta key that panics when read
}

func (f *fakeSource) Meta(_ context.Context, id int64, key string) (any, error) {
	if key == f.panic {
		panic("boom")
	}
	v, ok := f.meta[id][key]
	if !ok {
		return nil, nil
	}
	return v, nil
}

func (f *fakeSource) Body(_ context.Context, id int64) (string, error) {
	return f.body[id], nil
}

const elementorData = `[{"id":"abc123","elType":"section","elements":[` +
	`{"id":"def","elType":"widget","widgetType":"heading","settings":{"title":"Welcome to <b>Acme</b>","_css_classes":"elementor-class-hero"}},` +
	`{"widgetType":"text-editor","settings":{"editor":"<p>We build   rockets.</p>"}}]}]`

func TestExtract_Elementor(t *testing.T) {
	src := &fakeSource{meta: map[int64]map[string]any{
		1: {"_elementor_edit_mode": "builder", "_elementor_data": elementorData},
	}}

	res := extract.New(src).Extract(context.Background(), 1)
	assert.Equal(t, "heading Welcome to Acme text-editor We build rockets.", res.Text)
	assert.Equal(t, []string{"elementor"}, res.Active)
	assert.Empty(t, res.Failures)
}

func TestExtract_StructuredValueUsedDirectly(t *testing.T) {
	src := &fakeSource{meta: map[int64]map[string]any{
		1: {
			"_elementor_edit_mode": "builder",
			"_elementor_data":      []any{map[string]any{"title": "Direct value"}},
		},
	}}

	res := extract.New(src).Extract(context.Background(), 1)
	assert.Equal(t, "Direct value", res.Text)
}

func TestExtract_MalformedJSONIsolated(t *testing.T) {
	src := &fakeSource{
		meta: map[int64]map[string]any{
			7: {
				"_elementor_edit_mode": "builder",
				"_elementor_data":      `[{"settings":{"title":"broken"`,
				"_et_pb_use_builder":   "on",
			},
		},
		body: map[int64]string{
			7: `[et_pb_section][et_pb_text admin_label="Intro"]<p>Hello from Divi</p>[/et_pb_text][/et_pb_section]`,
		},
	}

	res := extract.New(src).Extract(context.Background(), 7)
	assert.Equal(t, "Hello from Divi", res.Text)
	assert.Equal(t, []string{"elementor", "divi"}, res.Active)
	require.Len(t, res.Failures, 1)
	assert.Equal(t, "elementor", res.Failures[0].Builder)
	assert.ErrorIs(t, res.Failures[0].Err, extract.ErrMalformed)
}

func TestExtract_PanicIsolated(t *testing.T) {
	src := &fakeSource{
		meta: map[int64]map[string]any{
			1: {"tcb_editor_enabled": "1"},
		},
		body:  map[int64]string{1: "<div>Thrive <em>rocks</em></div>"},
		panic: "_fl_builder_enabled",
	}

	res := extract.New(src).Extract(context.Background(), 1)
	assert.Equal(t, "Thrive rocks", res.Text)
	require.Len(t, res.Failures, 1)
	assert.Equal(t, "beaver_builder", res.Failures[0].Builder)
}

func TestExtract_BeaverBuilderSerialized(t *testing.T) {
	payload := `a:1:{s:5:"node1";O:8:"stdClass":2:{s:4:"type";s:6:"module";` +
		`s:8:"settings";O:8:"stdClass":1:{s:4:"text";s:18:"<p>Fresh bread</p>";}}}`
	src := &fakeSource{meta: map[int64]map[string]any{
		3: {"_fl_builder_enabled": "1", "_fl_builder_data": payload},
	}}

	res := extract.New(src).Extract(context.Background(), 3)
	assert.Equal(t, "Fresh bread", res.Text)
	assert.Equal(t, []string{"beaver_builder"}, res.Active)
}

func TestExtract_ShortcodeData(t *testing.T) {
	src := &fakeSource{meta: map[int64]map[string]any{
		4: {"ct_builder_shortcodes": "[ct_section][ct_text_block]Oxygen copy[/ct_text_block][/ct_section]"},
	}}

	res := extract.New(src).Extract(context.Background(), 4)
	assert.Equal(t, "Oxygen copy", res.Text)
}

func TestExtract_Inactive(t *testing.T) {
	tests := []struct {
		name string
		meta map[string]any
	}{
		{"absent", map[string]any{}},
		{"off", map[string]any{"_elementor_edit_mode": "off", "_elementor_data": `[{"title":"x"}]`}},
		{"zero", map[string]any{"_fl_builder_enabled": "0", "_fl_builder_data": `a:0:{}`}},
		{"false", map[string]any{"_seedprod_page": false}},
		{"empty", map[string]any{"_bricks_page_content_2": ""}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := &fakeSource{meta: map[int64]map[string]any{1: tt.meta}}
			res := extract.New(src).Extract(context.Background(), 1)
			assert.Empty(t, res.Text)
			assert.Empty(t, res.Active)
			assert.Empty(t, res.Failures)
		})
	}
}

func TestExtract_ActiveButEmptyData(t *testing.T) {
	src := &fakeSource{meta: map[int64]map[string]any{
		1: {"_elementor_edit_mode": "builder"},
	}}
	res := extract.New(src).Extract(context.Background(), 1)
	assert.Empty(t, res.Text)
	assert.Equal(t, []string{"elementor"}, res.Active)
}

func TestExtract_ScalarJSONContributesNothing(t *testing.T) {
	src := &fakeSource{meta: map[int64]map[string]any{
		1: {"_breakdance_data": `"just a string value"`},
	}}
	res := extract.New(src).Extract(context.Background(), 1)
	assert.Empty(t, res.Text)
	assert.Empty(t, res.Failures)
}

func TestWalk(t *testing.T) {
	x := extract.New(nil)
	n := extract.Map(
		extract.Field{Key: "link", Value: extract.Str("https://example.com/some/long/path")},
		extract.Field{Key: "custom_css", Value: extract.Str("{color:red;margin:0}")},
		extract.Field{Key: "blurb", Value: extract.Str("Our bakery opens at dawn every day")},
		extract.Field{Key: "anchor", Value: extract.Str("section_id_42")},
		extract.Field{Key: "short", Value: extract.Str("tiny text")},
		extract.Field{Key: "count", Value: extract.Node{Kind: extract.KindNumber, Str: "12345678901"}},
		extract.Field{Key: "title", Value: extract.Str("Hi")},
		extract.Field{Key: "items", Value: extract.List(
			extract.Str("A list entry long enough"),
			extract.Str("short"),
		)},
	)
	assert.Equal(t, "Our bakery opens at dawn every day Hi A list entry long enough", x.Walk(n))
}

func TestWalk_CustomHeuristics(t *testing.T) {
	h := extract.DefaultHeuristics()
	h.MinLength = 3
	x := extract.New(nil, extract.WithHeuristics(h))

	n := extract.Map(extract.Field{Key: "misc", Value: extract.Str("tiny text")})
	assert.Equal(t, "tiny text", x.Walk(n))
}

func TestLooksLikeContent(t *testing.T) {
	h := extract.DefaultHeuristics()
	tests := []struct {
		text string
		want bool
	}{
		{"Plain readable sentence here", true},
		{"/uploads/2024/image", false},
		{`C:\Users\file`, false},
		{"!!!***???...", false},
		{"color: red; font-size: 12px", false},
		{"[1, 2, 3, 4, 5]", false},
		{"data_type hidden", false},
		{"The class of 2024 gathered in the main hall for the ceremony", true},
		{"Привет мир, это обычный текст", true},
		{"", false},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			assert.Equal(t, tt.want, h.LooksLikeContent(tt.text))
		})
	}
}

func TestClean(t *testing.T) {
	assert.Equal(t, "Fish & Chips", extract.Clean(`<p>Fish &amp; <strong>Chips</strong></p> [gallery ids="1,2"]`))
	assert.Equal(t, "kept", extract.Clean(`<script>alert(1)</script>kept`))
	assert.Equal(t, "a b", extract.CollapseSpace(" a \u00a0\n b "))
	assert.Equal(t, "inner text", extract.StripShortcodes(`[box style="x"]inner text[/box]`))
	assert.Equal(t, "x  y", extract.StripBrackets("x [anything here] y"))
}

func TestParseJSON_KeepsOrder(t *testing.T) {
	n, err := extract.ParseJSON(`{"z":1,"a":"two","m":[true,null]}`)
	require.NoError(t, err)
	require.Equal(t, extract.KindMap, n.Kind)

	var keys []string
	n.Each(func(k string, _ extract.Node) { keys = append(keys, k) })
	assert.Equal(t, []string{"z", "a", "m"}, keys)

	m, ok := n.Get("m")
	require.True(t, ok)
	require.Len(t, m.Items, 2)
	assert.Equal(t, extract.KindBool, m.Items[0].Kind)
	assert.Equal(t, extract.KindNull, m.Items[1].Kind)

	_, err = extract.ParseJSON(`{"a":`)
	assert.ErrorIs(t, err, extract.ErrMalformed)
}

func TestUnserialize(t *testing.T) {
	n, err := extract.Unserialize(`a:2:{i:0;s:3:"foo";s:3:"bar";a:1:{s:4:"text";b:1;}}`)
	require.NoError(t, err)
	require.Equal(t, extract.KindMap, n.Kind)

	v, ok := n.Get("0")
	require.True(t, ok)
	assert.Equal(t, "foo", v.Str)

	bar, ok := n.Get("bar")
	require.True(t, ok)
	text, ok := bar.Get("text")
	require.True(t, ok)
	assert.True(t, text.Bool)

	n, err = extract.Unserialize("O:8:\"stdClass\":1:{s:7:\"\x00*\x00prop\";s:2:\"hi\";}")
	require.NoError(t, err)
	prop, ok := n.Get("prop")
	require.True(t, ok)
	assert.Equal(t, "hi", prop.Str)

	n, err = extract.Unserialize(`s:6:"héllo";`)
	require.NoError(t, err)
	assert.Equal(t, "héllo", n.Str)

	n, err = extract.Unserialize(`d:1.5;`)
	require.NoError(t, err)
	assert.Equal(t, extract.KindNumber, n.Kind)
	assert.Equal(t, "1.5", n.Str)

	n, err = extract.Unserialize(`N;`)
	require.NoError(t, err)
	assert.Equal(t, extract.KindNull, n.Kind)
}

func TestUnserialize_Malformed(t *testing.T) {
	inputs := []string{
		"",
		"x:1;",
		`s:10:"short";`,
		`a:2:{i:0;s:1:"a";}`,
		`a:1:{i:0;s:1:"a";`,
		"i:abc;",
		"b:2;",
		`s:3:"abc";junk`,
		"a:99999999:{}",
		`s:9223372036854775807:"abc";`,
		`C:1:"X":9223372036854775807:{}`,
		strings.Repeat("a:1:{i:0;", 600) + "N;" + strings.Repeat("}", 600),
	}
	for _, in := range inputs {
		name := in
		if len(name) > 20 {
			name = name[:20]
		}
		t.Run(name, func(t *testing.T) {
			assert.NotPanics(t, func() {
				_, err := extract.Unserialize(in)
				assert.True(t, errors.Is(err, extract.ErrMalformed), "got %v", err)
			})
		})
	}
}

func TestFromValue_SortsMapKeys(t *testing.T) {
	n := extract.FromValue(map[string]any{"b": "2", "a": 1.0})
	var keys []string
	n.Each(func(k string, _ extract.Node) { keys = append(keys, k) })
	assert.Equal(t, []string{"a", "b"}, keys)
}
