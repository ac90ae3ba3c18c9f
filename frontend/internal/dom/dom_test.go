package dom

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testPage = `<!DOCTYPE html>
<html><head><title>t</title></head>
<body>
  <div id="list"><p>Loading...</p></div>
  <form id="form">
    <input type="hidden" name="csrf_token" value="tok">
    <input type="email" id="email" name="email" required>
    <input type="text" id="nick" name="nick" value="anon">
    <select id="choice" name="choice" required>
      <option value="">-- pick --</option>
      <option value="a">A</option>
      <option>B</option>
    </select>
  </form>
  <div id="message" class="hidden"></div>
</body></html>`

func mustParse(t *testing.T) *Document {
	t.Helper()
	doc, err := Parse(strings.NewReader(testPage))
	require.NoError(t, err)
	return doc
}

func TestGetElementByID(t *testing.T) {
	doc := mustParse(t)

	list := doc.GetElementByID("list")
	require.NotNil(t, list)
	assert.Equal(t, "div", list.TagName())
	assert.Equal(t, "Loading...", list.TextContent())

	assert.Nil(t, doc.GetElementByID("missing"))
}

func TestClassList(t *testing.T) {
	doc := mustParse(t)
	msg := doc.GetElementByID("message")

	msg.SetClassName("success")
	assert.Equal(t, []string{"success"}, msg.ClassList())

	msg.AddClass("hidden")
	msg.AddClass("hidden")
	assert.Equal(t, "success hidden", msg.ClassName())
	assert.True(t, msg.HasClass("hidden"))

	msg.RemoveClass("hidden")
	assert.Equal(t, "success", msg.ClassName())
	assert.False(t, msg.HasClass("hidden"))
}

func TestBuildAndRender(t *testing.T) {
	doc := mustParse(t)
	list := doc.GetElementByID("list")
	list.ReplaceChildren()

	card := doc.CreateElement("div")
	card.SetClassName("card")
	title := doc.CreateElement("h4")
	title.SetTextContent(`<b>Chess & "Co"</b>`)
	card.AppendChild(title)
	btn := doc.CreateElement("button")
	btn.SetData("email", "a@x.com")
	card.AppendChild(btn)
	list.AppendChild(card)

	require.Len(t, doc.ByClass("card"), 1)
	assert.Equal(t, "a@x.com", btn.Data("email"))
	assert.True(t, card.Parent().Is(list))

	var b strings.Builder
	require.NoError(t, doc.Render(&b))
	out := b.String()
	assert.Contains(t, out, `<h4>&lt;b&gt;Chess &amp; &#34;Co&#34;&lt;/b&gt;</h4>`)
	assert.Contains(t, out, `data-email="a@x.com"`)
	assert.NotContains(t, out, "Loading...")
}

func TestSetInnerHTML(t *testing.T) {
	doc := mustParse(t)
	list := doc.GetElementByID("list")

	require.NoError(t, list.SetInnerHTML("<p>Failed to load activities. Please try again later.</p>"))

	children := list.Children()
	require.Len(t, children, 1)
	assert.Equal(t, "p", children[0].TagName())
	assert.Equal(t, "Failed to load activities. Please try again later.", list.TextContent())
}

func TestListenersDroppedWithNodes(t *testing.T) {
	doc := mustParse(t)
	list := doc.GetElementByID("list")

	btn := list.AppendChild(doc.CreateElement("button"))
	btn.AddEventListener(EventClick, func(context.Context, *Event) {})
	btn.AddEventListener(EventClick, func(context.Context, *Event) {})
	assert.Len(t, btn.Listeners(EventClick), 2)
	assert.Equal(t, 2, doc.ListenerCount())

	list.ReplaceChildren()
	assert.Equal(t, 0, doc.ListenerCount())
	assert.Empty(t, btn.Listeners(EventClick))
}

func TestInvoke(t *testing.T) {
	doc := mustParse(t)
	btn := doc.CreateElement("button")

	var order []int
	btn.AddEventListener(EventClick, func(_ context.Context, ev *Event) { order = append(order, 1) })
	btn.AddEventListener(EventClick, func(_ context.Context, ev *Event) {
		order = append(order, 2)
		ev.PreventDefault()
	})

	ev := NewEvent(EventClick, btn)
	prevented := Invoke(context.Background(), ev, btn.Listeners(EventClick))

	assert.True(t, prevented)
	assert.Equal(t, []int{1, 2}, order)
	assert.True(t, ev.Target.Is(btn))
}

func TestSelectValue(t *testing.T) {
	doc := mustParse(t)
	sel := doc.GetElementByID("choice")

	assert.Equal(t, "", sel.Value(), "first option is selected by default")

	sel.SetValue("a")
	assert.Equal(t, "a", sel.Value())

	sel.SetValue("B")
	assert.Equal(t, "B", sel.Value(), "option without value attribute uses its text")

	sel.SetValue("zzz")
	assert.Equal(t, "", sel.Value())
}

func TestFormReset(t *testing.T) {
	doc := mustParse(t)
	form := doc.GetElementByID("form")

	doc.GetElementByID("email").SetValue("new@x.com")
	doc.GetElementByID("nick").SetValue("bob")
	doc.GetElementByID("choice").SetValue("a")

	form.Reset()

	assert.Equal(t, "", doc.GetElementByID("email").Value())
	assert.Equal(t, "anon", doc.GetElementByID("nick").Value())
	assert.Equal(t, "", doc.GetElementByID("choice").Value())
	assert.Equal(t, "tok", form.Find(func(e *Element) bool { return e.GetAttribute("name") == "csrf_token" })[0].Value())
}

func TestCheckValidity(t *testing.T) {
	tests := []struct {
		name    string
		email   string
		choice  string
		wantErr string
	}{
		{"valid", "a@x.com", "a", ""},
		{"missing email", "", "a", "email is required"},
		{"bad email", "not-an-email", "a", "email is not a valid email address"},
		{"placeholder selected", "a@x.com", "", "choice is required"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := mustParse(t)
			doc.GetElementByID("email").SetValue(tt.email)
			doc.GetElementByID("choice").SetValue(tt.choice)

			err := doc.GetElementByID("form").CheckValidity()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, ErrInvalidForm)
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestSetDefaultValue(t *testing.T) {
	doc := mustParse(t)
	form := doc.GetElementByID("form")
	nick := doc.GetElementByID("nick")

	nick.SetDefaultValue("carol")
	nick.SetValue("dave")
	form.Reset()

	assert.Equal(t, "carol", nick.Value())
}
