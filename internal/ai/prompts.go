package ai

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"
)

// PromptData holds the parameters for template rendering
type PromptData struct {
	PRContent    string
	Scopes       string
	ExtraContext string
	Version      string
	Changelog    string
}

// RenderPrompt renders a prompt template with the provided data
func RenderPrompt(name, tmplStr string, data interface{}) (string, error) {
	tmpl, err := template.New(name).Parse(tmplStr)
	if err != nil {
		return "", fmt.Errorf("error parsing template %s: %w", name, err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("error executing template %s: %w", name, err)
	}

	return buf.String(), nil
}

const prPromptTemplateEN = `# Task
Act as a release engineer for the Ribir GUI framework and document a Pull Request.

# PR Content
{{.PRContent}}
{{if .ExtraContext}}
# Extra Context From the Author
{{.ExtraContext}}
{{end}}
# Golden Rules (Constraints)
1. **No Hallucinations:** If it is not in the commits or the diff summary, DO NOT invent it.
2. **Tone:** Professional, direct, technical.
3. **Format:** Raw JSON only. Do not wrap the answer in markdown code blocks.

# Summary Rules
- Start with a short paragraph saying what the change does and why.
- Then two blocks:
  **Context**: the problem or motivation, one or two sentences.
  **Changes**: a bullet list of the concrete changes.

# Changelog Rules
- Each entry is one line: "- type(scope): description".
- Allowed types: feat, fix, change, perf, docs, breaking, internal.
- Allowed scopes: {{.Scopes}}. Omit the scope when none fits.
- Describe user-visible behavior, not implementation details.
- Set "skip_changelog" to true ONLY for changes with no user impact at
  all: tests, CI, internal tooling, or a fix for a bug that was never
  released. When skipping, "changelog" must be an empty string.

# Required JSON Schema
{
  "summary": "string, the summary described above",
  "changelog": "string, newline-separated entry bullets",
  "skip_changelog": false
}`

const prPromptTemplateZH = `# 任务
你是 Ribir GUI 框架的发布工程师，请为一个 Pull Request 撰写文档。

# PR 内容
{{.PRContent}}
{{if .ExtraContext}}
# 作者补充的上下文
{{.ExtraContext}}
{{end}}
# 约束
1. 不要编造：commits 和 diff 摘要里没有的内容一律不写。
2. 语气专业、直接、技术化。摘要用英文书写。
3. 只输出原始 JSON，不要包裹 markdown 代码块。

# 摘要规则
- 先用一小段话说明这个改动做了什么、为什么。
- 然后给出两个块：
  **Context**：问题或动机，一到两句。
  **Changes**：具体改动的列表。

# Changelog 规则
- 每条一行："- type(scope): description"。
- 允许的 type：feat, fix, change, perf, docs, breaking, internal。
- 允许的 scope：{{.Scopes}}。没有合适的就省略。
- 描述用户可见的行为，而不是实现细节。
- 只有完全没有用户影响的改动（测试、CI、内部工具、未发布 bug 的修复）
  才把 "skip_changelog" 设为 true，此时 "changelog" 必须是空字符串。

# 必须返回的 JSON 结构
{
  "summary": "string",
  "changelog": "string, 换行分隔的条目",
  "skip_changelog": false
}`

const highlightsPromptTemplateEN = `# Task
Pick release highlights for Ribir {{.Version}} from its changelog section.

# Changelog
{{.Changelog}}

# Rules
1. Pick between 3 and 5 items a user would actually care about.
2. Each description is a single line, under 60 characters, no trailing period.
3. Pick an emoji that matches the kind of change (🎨 feature, 🐛 fix,
   ⚡ performance, 💥 breaking, 🔧 internal).
4. Raw JSON only, no markdown code blocks.

# Required JSON Schema
{
  "highlights": [
    {"emoji": "🎨", "description": "string"}
  ]
}`

// GetPRPromptTemplate returns the PR prompt for the configured language.
func GetPRPromptTemplate(lang string) string {
	if strings.HasPrefix(strings.ToLower(lang), "zh") {
		return prPromptTemplateZH
	}
	return prPromptTemplateEN
}

// GetHighlightsPromptTemplate returns the highlights prompt. Highlights are
// always written in English, the changelog's language.
func GetHighlightsPromptTemplate() string {
	return highlightsPromptTemplateEN
}
