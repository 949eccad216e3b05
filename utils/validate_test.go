package utils

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

type target struct {
	Name string `json:"name" validate:"required,max=8"`
	URL  string `json:"url" validate:"required,http_url"`
}

type options struct {
	Attempts int      `json:"attempts" validate:"gt=0,lte=10"`
	Mode     string   `json:"mode" validate:"oneof=sync async"`
	Target   target   `json:"target"`
	Headers  []string `json:"headers" validate:"min=1"`
}

func TestValidate(t *testing.T) {
	err := Validate(&options{
		Attempts: 0,
		Mode:     "x",
		Target: target{
			Name: "a very long name",
			URL:  "mailto:someone@example.com",
		},
	})
	bytes, _ := json.MarshalIndent(err, "", "   ")
	expected := `
{
   "message": "request validation",
   "fields": {
      "attempts": "value must be > 0",
      "mode": "invalid value: x",
      "headers": "length must be at least 1",
      "target": {
         "name": "length must be at most 8",
         "url": "must be an absolute http or https URL"
      }
   }
}
`
	assert.JSONEq(t, expected, string(bytes))
}

func TestValidatePasses(t *testing.T) {
	err := Validate(&options{
		Attempts: 3,
		Mode:     "sync",
		Target:   target{Name: "slack", URL: "https://hooks.example.com/a?b=c"},
		Headers:  []string{"X-Test"},
	})
	assert.NoError(t, err)
}
