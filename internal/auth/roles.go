package auth

import "maps"

// Capabilities that are not tied to a content kind.
const (
	CapRead          = "read"
	CapListUsers     = "list_users"
	CapEditUsers     = "edit_users"
	CapUploadFiles   = "upload_files"
	CapManageOptions = "manage_options"
)

// Meta capabilities, checked against one entity and mapped to primitive
// capabilities by Actor.Can.
const (
	MetaEditPost   = "edit_post"
	MetaDeletePost = "delete_post"
	MetaReadPost   = "read_post"
)

// Role names.
const (
	RoleAdministrator = "administrator"
	RoleEditor        = "editor"
	RoleAuthor        = "author"
	RoleContributor   = "contributor"
	RoleSubscriber    = "subscriber"
	RoleShopManager   = "shop_manager"
)

// Capability verbs, combined with a plural type to form "edit_others_pages".
const (
	verbEdit            = "edit"
	verbEditOthers      = "edit_others"
	verbEditPublished   = "edit_published"
	verbEditPrivate     = "edit_private"
	verbReadPrivate     = "read_private"
	verbDelete          = "delete"
	verbDeleteOthers    = "delete_others"
	verbDeletePublished = "delete_published"
	verbDeletePrivate   = "delete_private"
	verbPublish         = "publish"
)

var allVerbs = []string{
	verbEdit, verbEditOthers, verbEditPublished, verbEditPrivate, verbReadPrivate,
	verbDelete, verbDeleteOthers, verbDeletePublished, verbDeletePrivate, verbPublish,
}

// roles maps role names to their primitive capabilities.
var roles = map[string]map[string]bool{
	RoleAdministrator: merge(
		set(CapRead, CapListUsers, CapEditUsers, CapUploadFiles, CapManageOptions),
		typed("posts", allVerbs...),
		typed("pages", allVerbs...),
		typed("products", allVerbs...),
	),
	RoleEditor: merge(
		set(CapRead, CapUploadFiles),
		typed("posts", allVerbs...),
		typed("pages", allVerbs...),
	),
	RoleAuthor: merge(
		set(CapRead, CapUploadFiles),
		typed("posts", verbEdit, verbEditPublished, verbDelete, verbDeletePublished, verbPublish),
	),
	RoleContributor: merge(
		set(CapRead),
		typed("posts", verbEdit, verbDelete),
	),
	RoleSubscriber: set(CapRead),
	RoleShopManager: merge(
		set(CapRead, CapListUsers, CapEditUsers, CapUploadFiles),
		typed("posts", allVerbs...),
		typed("pages", allVerbs...),
		typed("products", allVerbs...),
	),
}

// RoleCapabilities returns a copy of the capabilities granted to role. An
// unknown role has none.
func RoleCapabilities(role string) map[string]bool {
	return maps.Clone(roles[role])
}

func set(caps ...string) map[string]bool {
	m := make(map[string]bool, len(caps))
	for _, c := range caps {
		m[c] = true
	}
	return m
}

func typed(plural string, verbs ...string) map[string]bool {
	m := make(map[string]bool, len(verbs))
	for _, v := range verbs {
		m[v+"_"+plural] = true
	}
	return m
}

func merge(sets ...map[string]bool) map[string]bool {
	out := map[string]bool{}
	for _, s := range sets {
		maps.Copy(out, s)
	}
	return out
}
