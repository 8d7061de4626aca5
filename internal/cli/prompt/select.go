package prompt

import (
	"github.com/manifoldco/promptui"
)

const selectPageSize = 10

// SelectOption is one entry in a selection list.
type SelectOption struct {
	Label       string
	Value       string
	Description string
}

// Select shows a picker and returns the value of the chosen option.
// A Description on the first option enables a detail pane under the list.
func Select(label string, options []SelectOption) (string, error) {
	templates := &promptui.SelectTemplates{
		Label:    "{{ . }}",
		Active:   "▸ {{ .Label | cyan }}",
		Inactive: "  {{ .Label }}",
		Selected: `{{ "*" | green }} {{ .Label }}`,
	}
	if len(options) != 0 && options[0].Description != "" {
		templates.Details = "\n{{ \"Description:\" | faint }}\t{{ .Description }}"
	}

	picker := promptui.Select{
		Label:     label,
		Items:     options,
		Templates: templates,
		Size:      selectPageSize,
	}

	choice, _, err := picker.Run()
	if err != nil {
		return "", foldAbort(err)
	}
	return options[choice].Value, nil
}
