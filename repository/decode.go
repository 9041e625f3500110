package repository

import "fmt"

// decodeStructureDefinition maps a <StructureDefinition> node to a built
// StructureDefinition plus any slice StructureDefinitions synthesized while
// adding its elements (spec.md §4.1 "Builders").
func decodeStructureDefinition(n *node) (*StructureDefinition, []*StructureDefinition, error) {
	url, _ := attrText(n, "url")
	version, _ := attrText(n, "version")
	typeCode, _ := attrText(n, "type")
	baseDef, _ := attrText(n, "baseDefinition")
	kind := Kind(valueOr(n, "kind", "complexType"))
	derivation := Derivation(valueOr(n, "derivation", "specialization"))
	abstract := childValueBool(n, "abstract")
	name, _ := attrText(n, "name")

	b := NewStructureDefinitionBuilder(typeCode, url, version, kind, derivation).
		SetBaseDefinition(baseDef).
		SetAbstract(abstract).
		SetName(name)

	elements := snapshotElements(n)
	for _, elemNode := range elements {
		proto, err := decodeElementDefinition(elemNode)
		if err != nil {
			return nil, nil, fmt.Errorf("structure definition %q: %w", url, err)
		}
		b.AddElement(proto)
	}

	sd, slices := b.Build()
	return sd, slices, nil
}

// snapshotElements prefers the snapshot's element list (fully expanded) and
// falls back to the differential (spec.md §4.1 distinguishes the two but the
// builder invariants apply identically to either source).
func snapshotElements(n *node) []*node {
	if snap := n.child("snapshot"); snap != nil {
		return snap.childrenNamed("element")
	}
	if diff := n.child("differential"); diff != nil {
		return diff.childrenNamed("element")
	}
	return nil
}

func decodeElementDefinition(n *node) (ElementDefinition, error) {
	path, _ := attrText(n, "path")
	sliceName, hasSlice := attrText(n, "sliceName")

	originalName := path
	if hasSlice && sliceName != "" {
		originalName = pathWithSlice(path, sliceName)
	}

	ed := ElementDefinition{
		OriginalName: originalName,
		SliceName:    sliceName,
	}

	if minNode := n.child("min"); minNode != nil {
		if v, ok := attrInt(minNode, "value"); ok {
			ed.Cardinality.Min = uint32(v)
		}
	}
	if maxNode := n.child("max"); maxNode != nil {
		if v, ok := maxNode.attr("value"); ok {
			if v == "*" {
				ed.Cardinality.MaxUnbounded = true
				ed.IsArray = true
			} else if iv, err := parseUint(v); err == nil {
				ed.Cardinality.Max = iv
				ed.IsArray = iv > 1
			}
		}
	}

	for _, typeNode := range n.childrenNamed("type") {
		t := TypeRef{}
		if code, ok := attrText(typeNode, "code"); ok {
			t.Code = code
		}
		for _, p := range typeNode.childrenNamed("profile") {
			if v, ok := attrText(p, "value"); ok {
				t.Profiles = append(t.Profiles, v)
			}
		}
		for _, p := range typeNode.childrenNamed("targetProfile") {
			if v, ok := attrText(p, "value"); ok {
				t.TargetProfiles = append(t.TargetProfiles, v)
			}
		}
		ed.Types = append(ed.Types, t)
	}
	if len(ed.Types) == 1 {
		ed.TypeID = ed.Types[0].Code
	}

	if cr, ok := attrText(n, "contentReference"); ok {
		ed.ContentReference = cr
	}

	if bindingNode := n.child("binding"); bindingNode != nil {
		strength, _ := attrText(bindingNode, "strength")
		vsURL := ""
		if vsNode := bindingNode.child("valueSet"); vsNode != nil {
			vsURL, _ = attrText(vsNode, "value")
		}
		ed.Binding = &Binding{
			Strength:    BindingStrength(strength),
			ValueSetKey: DefinitionKey{URL: vsURL},
		}
	}

	for _, cNode := range n.childrenNamed("constraint") {
		key, _ := attrText(cNode, "key")
		severity, _ := attrText(cNode, "severity")
		human, _ := attrText(cNode, "human")
		expr, _ := attrText(cNode, "expression")
		ed.Constraints = append(ed.Constraints, Constraint{
			Key: key, Severity: severity, Human: human, Expression: expr,
		})
	}

	if slicingNode := n.child("slicing"); slicingNode != nil {
		s := &Slicing{
			Ordered: childValueBool(slicingNode, "ordered"),
			Rules:   SlicingRules(valueOr(slicingNode, "rules", "open")),
		}
		for _, dNode := range slicingNode.childrenNamed("discriminator") {
			dtype, _ := attrText(dNode, "type")
			dpath, _ := attrText(dNode, "path")
			s.Discriminators = append(s.Discriminators, Discriminator{
				Type: DiscriminatorType(dtype), Path: dpath,
			})
		}
		ed.Slicing = s
	}

	if maxLenNode := n.child("maxLength"); maxLenNode != nil {
		if v, ok := attrInt(maxLenNode, "value"); ok {
			ed.MaxLength = v
		}
	}

	if fixedChild, _ := n.choiceChild("fixed"); fixedChild != nil {
		ed.Fixed = nodeToXMLElement(fixedChild)
	}
	if patternChild, _ := n.choiceChild("pattern"); patternChild != nil {
		ed.Pattern = nodeToXMLElement(patternChild)
	}

	return ed, nil
}

func pathWithSlice(path, sliceName string) string {
	return path + ":" + sliceName
}

func attrText(n *node, name string) (string, bool) {
	if c := n.child(name); c != nil {
		return c.attr("value")
	}
	return n.attr(name)
}

func valueOr(n *node, name, fallback string) string {
	if v, ok := attrText(n, name); ok {
		return v
	}
	return fallback
}

func childValueBool(n *node, childName string) bool {
	c := n.child(childName)
	if c == nil {
		return attrBool(n, childName)
	}
	return attrBool(c, "value")
}

func parseUint(s string) (uint32, error) {
	var v uint32
	for _, c := range s {
		if c < '0' || c > '9' {
			return 0, fmt.Errorf("not a number: %q", s)
		}
		v = v*10 + uint32(c-'0')
	}
	return v, nil
}

// decodeCodeSystem maps a <CodeSystem> node to a CodeSystem.
func decodeCodeSystem(n *node) (*CodeSystem, error) {
	url, _ := attrText(n, "url")
	version, _ := attrText(n, "version")
	cs := &CodeSystem{
		URL:           url,
		Version:       version,
		CaseSensitive: childValueBool(n, "caseSensitive"),
		Content:       ContentType(valueOr(n, "content", string(ContentComplete))),
	}
	if supNode := n.child("supplements"); supNode != nil {
		cs.Supplements, _ = attrText(supNode, "value")
	}
	for _, concept := range n.childrenNamed("concept") {
		decodeConcepts(cs, concept, "")
	}
	return cs, nil
}

// decodeConcepts recursively flattens a CodeSystem's nested <concept>
// elements into a flat Codes list with parent links (spec.md §3.2
// "hierarchical parent links").
func decodeConcepts(cs *CodeSystem, n *node, parent string) {
	code, _ := attrText(n, "code")
	display := ""
	if d := n.child("display"); d != nil {
		display, _ = attrText(d, "value")
	}
	cs.Codes = append(cs.Codes, Code{
		Code: code, CaseSensitive: cs.CaseSensitive, System: cs.URL,
		Display: display, Parent: parent,
	})
	for _, child := range n.childrenNamed("concept") {
		decodeConcepts(cs, child, code)
	}
}

// decodeValueSet maps a <ValueSet> node to a ValueSet (unfinalized).
func decodeValueSet(n *node) (*ValueSet, error) {
	url, _ := attrText(n, "url")
	version, _ := attrText(n, "version")
	vs := &ValueSet{URL: url, Version: version}

	compose := n.child("compose")
	if compose != nil {
		for _, inc := range compose.childrenNamed("include") {
			vs.Includes = append(vs.Includes, decodeValueSetRule(inc))
		}
		for _, exc := range compose.childrenNamed("exclude") {
			vs.Excludes = append(vs.Excludes, decodeValueSetRule(exc))
		}
	}

	if expansion := n.child("expansion"); expansion != nil {
		for _, contains := range expansion.childrenNamed("contains") {
			system, _ := attrText(contains, "system")
			code, _ := attrText(contains, "code")
			display, _ := attrText(contains, "display")
			vs.ExplicitExpansion = append(vs.ExplicitExpansion, Code{
				Code: code, System: system, Display: display, CaseSensitive: true,
			})
		}
	}

	return vs, nil
}

func decodeValueSetRule(n *node) ValueSetRule {
	rule := ValueSetRule{}
	if sysNode := n.child("system"); sysNode != nil {
		rule.SystemURL, _ = attrText(sysNode, "value")
	}
	for _, c := range n.childrenNamed("concept") {
		if code, ok := attrText(c, "code"); ok {
			rule.Codes = append(rule.Codes, code)
		}
	}
	for _, f := range n.childrenNamed("filter") {
		prop := ""
		if p := f.child("property"); p != nil {
			prop, _ = attrText(p, "value")
		}
		op := ""
		if o := f.child("op"); o != nil {
			op, _ = attrText(o, "value")
		}
		val := ""
		if v := f.child("value"); v != nil {
			val, _ = attrText(v, "value")
		}
		rule.Filters = append(rule.Filters, ConceptFilter{
			Property: prop, Op: ConceptFilterOp(op), Value: val,
		})
	}
	for _, vsNode := range n.childrenNamed("valueSet") {
		if v, ok := attrText(vsNode, "value"); ok {
			rule.ValueSetURLs = append(rule.ValueSetURLs, v)
		}
	}
	return rule
}
