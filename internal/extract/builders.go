package extract

// Format is how a page builder stores its layout.
type Format string

// Payload formats.
const (
	FormatJSON       Format = "json"
	FormatSerialized Format = "serialized"
	FormatShortcode  Format = "shortcode"
	FormatCustom     Format = "custom"
)

// Builder describes where one page builder keeps its data and how to tell
// it is in use on an entity. ActivationKey may equal DataKey.
type Builder struct {
	Name          string
	DataKey       string
	ActivationKey string
	Format        Format
}

// Builders lists the supported page builders in extraction order.
var Builders = []Builder{
	{Name: "elementor", DataKey: "_elementor_data", ActivationKey: "_elementor_edit_mode", Format: FormatJSON},
	{Name: "divi", DataKey: "_et_pb_use_builder", ActivationKey: "_et_pb_use_builder", Format: FormatShortcode},
	{Name: "beaver_builder", DataKey: "_fl_builder_data", ActivationKey: "_fl_builder_enabled", Format: FormatSerialized},
	{Name: "seedprod", DataKey: "_seedprod_page", ActivationKey: "_seedprod_page", Format: FormatJSON},
	{Name: "oxygen", DataKey: "ct_builder_shortcodes", ActivationKey: "ct_builder_shortcodes", Format: FormatShortcode},
	{Name: "bricks", DataKey: "_bricks_page_content_2", ActivationKey: "_bricks_page_content_2", Format: FormatJSON},
	{Name: "breakdance", DataKey: "_breakdance_data", ActivationKey: "_breakdance_data", Format: FormatJSON},
	{Name: "wpbakery", DataKey: "_wpb_vc_js_status", ActivationKey: "_wpb_vc_js_status", Format: FormatShortcode},
	{Name: "thrive_architect", DataKey: "tcb_editor_enabled", ActivationKey: "tcb_editor_enabled", Format: FormatCustom},
	{Name: "visual_composer", DataKey: "vcv-pageContent", ActivationKey: "vcv-pageContent", Format: FormatJSON},
}

// textKeys are keys whose string values are always treated as content.
var textKeys = map[string]bool{
	"content":     true,
	"text":        true,
	"title":       true,
	"heading":     true,
	"description": true,
	"caption":     true,
	"label":       true,
	"placeholder": true,
	"value":       true,
	"html":        true,
	"editor":      true,
	"textarea":    true,
	"settings":    true,
	"widgetType":  true,
}

// flagValues mark a shortcode builder whose meta is only an on switch; the
// shortcodes then live in the entity body.
var flagValues = map[string]bool{"on": true, "true": true, "1": true}
