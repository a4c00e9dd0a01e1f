package mcp

import "github.com/mark3labs/mcp-go/mcp"

var fetchToolDef = mcp.NewTool("spell_fetch",
	mcp.WithDescription("Fetch one spell from the catalog by name. Lookup is exact first, then case and whitespace insensitive."),
	mcp.WithString("name", mcp.Required(), mcp.Description("Spell name")),
	mcp.WithBoolean("normalize", mcp.Description("Re-normalize the formatted description")),
	mcp.WithReadOnlyHintAnnotation(true),
)

var listToolDef = mcp.NewTool("spell_list",
	mcp.WithDescription("List catalog spells in the working set, ordered by name. Returns summaries without descriptions."),
	mcp.WithArray("categories", mcp.Description("Category names; empty uses the configured working set"), mcp.WithStringItems()),
	mcp.WithNumber("level", mcp.Description("Exact spell level within the working categories"), mcp.Min(0)),
	mcp.WithBoolean("all_levels", mcp.Description("Ignore a configured level restriction")),
	mcp.WithNumber("max_spells", mcp.Description("Cap on the working set after sorting; 0 removes a configured cap"), mcp.Min(0)),
	mcp.WithNumber("limit", mcp.Description("Page size (default 20, max 500)"), mcp.Min(0)),
	mcp.WithNumber("offset", mcp.Description("Page offset"), mcp.Min(0)),
	mcp.WithReadOnlyHintAnnotation(true),
)

var categoriesToolDef = mcp.NewTool("spell_categories",
	mcp.WithDescription("List every spell-list category with its catalog spell count."),
	mcp.WithReadOnlyHintAnnotation(true),
)

var importToolDef = mcp.NewTool("spell_import",
	mcp.WithDescription("Import a spell dataset file into the catalog. Existing spells with the same name are replaced."),
	mcp.WithString("path", mcp.Required(), mcp.Description("Dataset path (.csv or .txt) in an allowed directory")),
	mcp.WithBoolean("strict", mcp.Description("Fail on the first malformed line instead of skipping it")),
)

var buildToolDef = mcp.NewTool("book_build",
	mcp.WithDescription("Build an EPUB spell book from a dataset file or, when input is omitted, from the catalog."),
	mcp.WithString("input", mcp.Description("Dataset path; omit to build from the catalog")),
	mcp.WithString("output", mcp.Description("Output .epub path; default ~/.spellbook/exports/<title>.epub")),
	mcp.WithArray("categories", mcp.Description("Category names; empty uses the configured working set"), mcp.WithStringItems()),
	mcp.WithNumber("level", mcp.Description("Exact spell level within the working categories"), mcp.Min(0)),
	mcp.WithBoolean("all_levels", mcp.Description("Ignore a configured level restriction")),
	mcp.WithNumber("max_spells", mcp.Description("Cap on the number of spells after sorting; 0 removes a configured cap"), mcp.Min(0)),
	mcp.WithString("title", mcp.Description("Book title")),
	mcp.WithString("creator", mcp.Description("Book creator")),
	mcp.WithBoolean("strict", mcp.Description("Fail on the first malformed dataset line")),
)

var verifyToolDef = mcp.NewTool("book_verify",
	mcp.WithDescription("Reopen a built EPUB and check its package structure."),
	mcp.WithString("path", mcp.Required(), mcp.Description("Path of the .epub to check")),
	mcp.WithReadOnlyHintAnnotation(true),
)
