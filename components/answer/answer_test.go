package answer

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	content := "Evo odgovora:\n```json\n{\"longresponse\":\"Dugi <b>odgovor</b>\",\"shortresponse\":\"Kratko\",\"title\":\"Naslov\"}\n```"
	ret, err := Parse(content)
	require.NoError(t, err)
	require.Equal(t, &Answer{LongResponse: "Dugi <b>odgovor</b>", ShortResponse: "Kratko", Title: "Naslov"}, ret)

	for _, bad := range []string{"", "no json here", "{}", "{\"longresponse\":", "} {"} {
		_, err := Parse(bad)
		if !errors.Is(err, ErrMalformed) {
			t.Errorf("Parse(%q) expected ErrMalformed, got %v", bad, err)
		}
	}
}

func TestRefusal(t *testing.T) {
	ret := Refusal()
	require.Equal(t, RefusalMessage, ret.LongResponse)
	require.Equal(t, RefusalMessage, ret.ShortResponse)
	require.Equal(t, RefusalMessage, ret.Title)
}

func TestSchema(t *testing.T) {
	bs, err := json.Marshal(Schema())
	require.NoError(t, err)
	var s struct {
		Type                 string         `json:"type"`
		AdditionalProperties *bool          `json:"additionalProperties"`
		Properties           map[string]any `json:"properties"`
		Required             []string       `json:"required"`
	}
	require.NoError(t, json.Unmarshal(bs, &s))
	require.Equal(t, "object", s.Type)
	require.NotNil(t, s.AdditionalProperties)
	require.False(t, *s.AdditionalProperties)
	require.ElementsMatch(t, []string{"longresponse", "shortresponse", "title"}, s.Required)
	require.Len(t, s.Properties, 3)
}

func TestNormalizeLong(t *testing.T) {
	got := NormalizeLong("Prvi red\nDrugi <b>red</b><script>alert(1)</script> <a href=\"https://example.com/vijest\">izvor</a> <img src=x onerror=alert(1)>")
	require.True(t, strings.HasPrefix(got, "Prvi red<br>Drugi <b>red</b>"), got)
	require.Contains(t, got, `href="https://example.com/vijest"`)
	require.Contains(t, got, `target="_blank"`)
	require.NotContains(t, got, "script")
	require.NotContains(t, got, "alert")
	require.NotContains(t, got, "<img")

	got = NormalizeLong(`<a href="javascript:alert(1)">klik</a>`)
	require.NotContains(t, got, "javascript")
}

func TestNormalizeLongMarkdown(t *testing.T) {
	got := NormalizeLong("**Sarajevo** je glavni grad.\n\nVise na [izvoru](https://example.com).")
	require.Contains(t, got, "<strong>Sarajevo</strong>")
	require.Contains(t, got, `href="https://example.com"`)
	require.NotContains(t, got, "**")
	require.NotContains(t, got, "<p>")
	require.False(t, strings.HasSuffix(got, "<br>"), got)
}

func TestNormalize(t *testing.T) {
	long := make([]string, 0, 60)
	for i := 0; i < 60; i++ {
		long = append(long, fmt.Sprintf("rijec%d", i))
	}
	a := &Answer{
		LongResponse:  "Odgovor",
		ShortResponse: "<b>Kratko</b> " + strings.Join(long, " "),
		Title:         "<h1>Naslov &amp; podnaslov</h1>",
	}
	a.Normalize()
	require.Equal(t, "Odgovor", a.LongResponse)
	require.Equal(t, "Naslov & podnaslov", a.Title)
	require.NotContains(t, a.ShortResponse, "<b>")
	require.Len(t, strings.Fields(a.ShortResponse), MaxShortWords)
	require.True(t, strings.HasPrefix(a.ShortResponse, "Kratko rijec0"))
}

func TestLimitWords(t *testing.T) {
	require.Equal(t, "Jedan, dva.", LimitWords("Jedan, dva. Tri", 2))
	require.Equal(t, "kratak tekst", LimitWords("kratak tekst", 50))
	require.Equal(t, "", LimitWords("", 50))
}
