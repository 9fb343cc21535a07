// This file translates scene and event blocks into the config model.

package hcl

import (
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/vk/gdcore/internal/config"
	"github.com/vk/gdcore/internal/events"
	"github.com/vk/gdcore/internal/expr"
	"github.com/zclconf/go-cty/cty"
)

// sceneBody is the content of a `scene "name" { ... }` block.
type sceneBody struct {
	Variables *cty.Value     `hcl:"variables,optional"`
	Layers    []*layerBlock  `hcl:"layer,block"`
	Objects   []*objectBlock `hcl:"object,block"`
}

type layerBlock struct {
	Name    string `hcl:"name,label"`
	Visible *bool  `hcl:"visible,optional"`
}

type objectBlock struct {
	Name      string     `hcl:"name,label"`
	Count     *int       `hcl:"count,optional"`
	Variables *cty.Value `hcl:"variables,optional"`
}

var (
	eventSchema = &hcl.BodySchema{
		Attributes: []hcl.AttributeSchema{{Name: "disabled"}},
		Blocks: []hcl.BlockHeaderSchema{
			{Type: "condition", LabelNames: []string{"type"}},
			{Type: "action", LabelNames: []string{"type"}},
			{Type: "event"},
			{Type: "foreach", LabelNames: []string{"object"}},
		},
	}
	conditionSchema = &hcl.BodySchema{
		Attributes: []hcl.AttributeSchema{{Name: "params"}, {Name: "inverted"}},
		Blocks:     []hcl.BlockHeaderSchema{{Type: "condition", LabelNames: []string{"type"}}},
	}
	actionSchema = &hcl.BodySchema{
		Attributes: []hcl.AttributeSchema{{Name: "params"}},
	}
)

func translateScene(block *hcl.Block) (*config.Scene, hcl.Diagnostics) {
	var body sceneBody
	diags := gohcl.DecodeBody(block.Body, nil, &body)
	if diags.HasErrors() {
		return nil, diags
	}

	s := &config.Scene{Name: block.Labels[0]}
	s.Variables, diags = valueMap(body.Variables, block.DefRange, diags)
	for _, l := range body.Layers {
		visible := true
		if l.Visible != nil {
			visible = *l.Visible
		}
		s.Layers = append(s.Layers, config.Layer{Name: l.Name, Visible: visible})
	}
	for _, o := range body.Objects {
		count := 1
		if o.Count != nil {
			count = *o.Count
		}
		if count < 0 {
			diags = append(diags, &hcl.Diagnostic{
				Severity: hcl.DiagError,
				Summary:  "Invalid object count",
				Detail:   fmt.Sprintf("Object %q has a negative count.", o.Name),
				Subject:  block.DefRange.Ptr(),
			})
			continue
		}
		obj := config.Object{Name: o.Name, Count: count}
		obj.Variables, diags = valueMap(o.Variables, block.DefRange, diags)
		s.Objects = append(s.Objects, obj)
	}
	return s, diags
}

// valueMap turns an object or map value into its attributes.
func valueMap(v *cty.Value, rng hcl.Range, diags hcl.Diagnostics) (map[string]cty.Value, hcl.Diagnostics) {
	if v == nil || v.IsNull() {
		return nil, diags
	}
	ty := v.Type()
	if !ty.IsObjectType() && !ty.IsMapType() {
		return nil, append(diags, &hcl.Diagnostic{
			Severity: hcl.DiagError,
			Summary:  "Invalid variables",
			Detail:   fmt.Sprintf("Variables must be an object, got %s.", ty.FriendlyName()),
			Subject:  rng.Ptr(),
		})
	}
	return v.AsValueMap(), diags
}

// translateEvent converts an `event` or `foreach` block and everything
// nested in it.
func translateEvent(block *hcl.Block) (events.Event, hcl.Diagnostics) {
	content, diags := block.Body.Content(eventSchema)
	if diags.HasErrors() {
		return nil, diags
	}

	var disabled bool
	if attr, ok := content.Attributes["disabled"]; ok {
		diags = append(diags, gohcl.DecodeExpression(attr.Expr, nil, &disabled)...)
	}

	var conditions, actions []*events.Instruction
	var subs events.List
	for _, b := range content.Blocks {
		switch b.Type {
		case "condition":
			instr, d := translateInstruction(b, conditionSchema)
			diags = append(diags, d...)
			conditions = append(conditions, instr)
		case "action":
			instr, d := translateInstruction(b, actionSchema)
			diags = append(diags, d...)
			actions = append(actions, instr)
		default:
			ev, d := translateEvent(b)
			diags = append(diags, d...)
			if ev != nil {
				subs = append(subs, ev)
			}
		}
	}
	if diags.HasErrors() {
		return nil, diags
	}

	if block.Type == "foreach" {
		return &events.ForEachEvent{
			Object:     block.Labels[0],
			Conditions: conditions,
			Actions:    actions,
			SubEvents:  subs,
			Disabled:   disabled,
		}, diags
	}
	return &events.StandardEvent{
		Conditions: conditions,
		Actions:    actions,
		SubEvents:  subs,
		Disabled:   disabled,
	}, diags
}

// translateInstruction converts a condition or action block. Parameters are
// kept as expressions and only evaluated when the handler reads them.
func translateInstruction(block *hcl.Block, schema *hcl.BodySchema) (*events.Instruction, hcl.Diagnostics) {
	content, diags := block.Body.Content(schema)
	typ := block.Labels[0]
	if typ == "" {
		diags = append(diags, &hcl.Diagnostic{
			Severity: hcl.DiagError,
			Summary:  "Missing instruction type",
			Detail:   "The instruction label must name a registered type.",
			Subject:  block.LabelRanges[0].Ptr(),
		})
	}

	var params []*expr.Expression
	if attr, ok := content.Attributes["params"]; ok {
		exprs, d := hcl.ExprList(attr.Expr)
		diags = append(diags, d...)
		for _, e := range exprs {
			params = append(params, expr.FromHCL(e))
		}
	}

	var inverted bool
	if attr, ok := content.Attributes["inverted"]; ok {
		diags = append(diags, gohcl.DecodeExpression(attr.Expr, nil, &inverted)...)
	}

	instr := events.NewInstruction(typ, params, inverted)
	var subs []*events.Instruction
	for _, b := range content.Blocks {
		sub, d := translateInstruction(b, conditionSchema)
		diags = append(diags, d...)
		subs = append(subs, sub)
	}
	if len(subs) > 0 {
		instr.SetSubInstructions(subs)
	}
	return instr, diags
}
