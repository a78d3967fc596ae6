package domain

import "testing"

func TestConversation_Validate(t *testing.T) {
	tests := []struct {
		name      string
		conv      Conversation
		wantErr   bool
		wantParam string
	}{
		{name: "empty", conv: nil, wantErr: true, wantParam: "history"},
		{name: "single user message", conv: Conversation{{Author: "user", Content: "hi"}}},
		{
			name: "bot author accepted",
			conv: Conversation{{Author: "user", Content: "hi"}, {Author: "bot", Content: "hello"}},
		},
		{
			name:      "missing author",
			conv:      Conversation{{Author: "user", Content: "hi"}, {Content: "orphan"}},
			wantErr:   true,
			wantParam: "history[1].author",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.conv.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err == nil {
				return
			}
			apiErr, ok := AsAPIError(err)
			if !ok || apiErr.Type != ErrorTypeBadRequest {
				t.Fatalf("Validate() error = %v, want bad_request", err)
			}
			if apiErr.Param != tt.wantParam {
				t.Errorf("Param = %q, want %q", apiErr.Param, tt.wantParam)
			}
		})
	}
}

func TestToolDeclaration_Required(t *testing.T) {
	decl := ToolDeclaration{
		Name: "addNumbers",
		Parameters: []Parameter{
			{Name: "num1", Type: ParamTypeNumber, Required: true},
			{Name: "label", Type: ParamTypeString},
			{Name: "num2", Type: ParamTypeNumber, Required: true},
		},
	}

	got := decl.Required()
	if len(got) != 2 || got[0] != "num1" || got[1] != "num2" {
		t.Errorf("Required() = %v, want [num1 num2]", got)
	}

	if _, ok := decl.Parameter("label"); !ok {
		t.Error("Parameter(label) not found")
	}
	if _, ok := decl.Parameter("missing"); ok {
		t.Error("Parameter(missing) found, want absent")
	}
}
