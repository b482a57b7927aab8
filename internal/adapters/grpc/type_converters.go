package grpc

import (
	"fmt"
	"sort"

	"google.golang.org/protobuf/types/known/structpb"

	"github.com/seertenedos/ErkleFoundryMods-sub000/internal/application/planning/commands"
	"github.com/seertenedos/ErkleFoundryMods-sub000/internal/application/planning/queries"
	"github.com/seertenedos/ErkleFoundryMods-sub000/internal/application/planning/services"
	"github.com/seertenedos/ErkleFoundryMods-sub000/internal/domain/planning"
	"github.com/seertenedos/ErkleFoundryMods-sub000/internal/domain/production"
)

// Conversion helpers for the application <-> google.protobuf.Struct boundary.
// Resource keys travel in their "kind:id" string form.

// ToProtobufSolveRequest encodes a solve command
func ToProtobufSolveRequest(cmd *commands.SolvePlanCommand) (*structpb.Struct, error) {
	return structpb.NewStruct(map[string]interface{}{
		"targets":  floatMap(cmd.Targets),
		"ignore":   stringList(cmd.Ignore),
		"disabled": stringList(cmd.Disabled),
	})
}

// FromProtobufSolveRequest decodes a solve command
func FromProtobufSolveRequest(s *structpb.Struct) (*commands.SolvePlanCommand, error) {
	m := s.AsMap()
	targets, err := readFloatMap(m["targets"])
	if err != nil {
		return nil, fmt.Errorf("targets: %w", err)
	}
	ignore, err := readStringList(m["ignore"])
	if err != nil {
		return nil, fmt.Errorf("ignore: %w", err)
	}
	disabled, err := readStringList(m["disabled"])
	if err != nil {
		return nil, fmt.Errorf("disabled: %w", err)
	}
	return &commands.SolvePlanCommand{Targets: targets, Ignore: ignore, Disabled: disabled}, nil
}

// ToProtobufSolveSavedRequest encodes a saved plan solve command
func ToProtobufSolveSavedRequest(cmd *commands.SolveSavedPlanCommand) (*structpb.Struct, error) {
	return structpb.NewStruct(map[string]interface{}{
		"plan_id":  cmd.PlanID,
		"disabled": stringList(cmd.Disabled),
	})
}

// FromProtobufSolveSavedRequest decodes a saved plan solve command
func FromProtobufSolveSavedRequest(s *structpb.Struct) (*commands.SolveSavedPlanCommand, error) {
	m := s.AsMap()
	planID, _ := m["plan_id"].(string)
	if planID == "" {
		return nil, fmt.Errorf("plan_id is required")
	}
	disabled, err := readStringList(m["disabled"])
	if err != nil {
		return nil, fmt.Errorf("disabled: %w", err)
	}
	return &commands.SolveSavedPlanCommand{PlanID: planID, Disabled: disabled}, nil
}

// ToProtobufSolveResponse encodes a solved plan with its report and demand tree
func ToProtobufSolveResponse(resp *commands.SolvePlanResponse) (*structpb.Struct, error) {
	out := map[string]interface{}{}
	if resp.Result != nil {
		out["recipe_rates"] = floatMap(resp.Result.RecipeRates)
		out["unresolved"] = keyedFloatMap(resp.Result.Unresolved)
		out["waste"] = keyedFloatMap(resp.Result.Waste)
		if resp.Result.Required != nil {
			out["required"] = requirementToMap(resp.Result.Required)
		}
	}
	if resp.Report != nil {
		out["report"] = reportToMap(resp.Report)
	}
	return structpb.NewStruct(out)
}

// FromProtobufSolveResponse decodes a solved plan
func FromProtobufSolveResponse(s *structpb.Struct) (*commands.SolvePlanResponse, error) {
	m := s.AsMap()
	var required *planning.Requirement
	if raw, ok := m["required"]; ok {
		node, err := requirementFromValue(raw)
		if err != nil {
			return nil, fmt.Errorf("required: %w", err)
		}
		required = node
	}

	result := planning.NewAccumulator(required)
	rates, err := readFloatMap(m["recipe_rates"])
	if err != nil {
		return nil, fmt.Errorf("recipe_rates: %w", err)
	}
	for id, rate := range rates {
		result.AddRecipeRate(id, rate)
	}
	unresolved, err := readKeyedFloatMap(m["unresolved"])
	if err != nil {
		return nil, fmt.Errorf("unresolved: %w", err)
	}
	for key, amount := range unresolved {
		result.AddUnresolved(key, amount)
	}
	waste, err := readKeyedFloatMap(m["waste"])
	if err != nil {
		return nil, fmt.Errorf("waste: %w", err)
	}
	for key, amount := range waste {
		result.AddWaste(key, amount)
	}

	response := &commands.SolvePlanResponse{Result: result}
	if raw, ok := m["report"]; ok {
		report, err := reportFromValue(raw)
		if err != nil {
			return nil, fmt.Errorf("report: %w", err)
		}
		response.Report = report
	}
	return response, nil
}

// ToProtobufListSubGraphsRequest encodes a decomposition query
func ToProtobufListSubGraphsRequest(query *queries.ListSubGraphsQuery) (*structpb.Struct, error) {
	return structpb.NewStruct(map[string]interface{}{"complex_only": query.ComplexOnly})
}

// FromProtobufListSubGraphsRequest decodes a decomposition query
func FromProtobufListSubGraphsRequest(s *structpb.Struct) *queries.ListSubGraphsQuery {
	complexOnly, _ := s.AsMap()["complex_only"].(bool)
	return &queries.ListSubGraphsQuery{ComplexOnly: complexOnly}
}

// ToProtobufListSubGraphsResponse encodes the decomposition
func ToProtobufListSubGraphsResponse(resp *queries.ListSubGraphsResponse) (*structpb.Struct, error) {
	groups := make([]interface{}, 0, len(resp.SubGraphs))
	for _, g := range resp.SubGraphs {
		groups = append(groups, map[string]interface{}{
			"id":          g.ID,
			"recipe_ids":  stringList(g.RecipeIDs),
			"products":    stringList(g.Products),
			"ingredients": stringList(g.Ingredients),
			"complex":     g.Complex,
			"depth":       g.Depth,
			"depends_on":  intList(g.DependsOn),
		})
	}
	merges := make([]interface{}, 0, len(resp.MergeGroups))
	for _, group := range resp.MergeGroups {
		merges = append(merges, stringList(group))
	}
	return structpb.NewStruct(map[string]interface{}{
		"catalog_version": float64(resp.CatalogVersion),
		"subgraphs":       groups,
		"merge_groups":    merges,
	})
}

// FromProtobufListSubGraphsResponse decodes the decomposition
func FromProtobufListSubGraphsResponse(s *structpb.Struct) (*queries.ListSubGraphsResponse, error) {
	m := s.AsMap()
	version, _ := m["catalog_version"].(float64)
	resp := &queries.ListSubGraphsResponse{
		CatalogVersion: uint64(version),
		SubGraphs:      make([]queries.SubGraphDTO, 0),
		MergeGroups:    make([][]string, 0),
	}

	rawGroups, _ := m["subgraphs"].([]interface{})
	for _, raw := range rawGroups {
		g, ok := raw.(map[string]interface{})
		if !ok {
			return nil, fmt.Errorf("subgraphs: expected object, got %T", raw)
		}
		id, _ := g["id"].(float64)
		depth, _ := g["depth"].(float64)
		complexGroup, _ := g["complex"].(bool)
		recipeIDs, err := readStringList(g["recipe_ids"])
		if err != nil {
			return nil, fmt.Errorf("recipe_ids: %w", err)
		}
		products, err := readStringList(g["products"])
		if err != nil {
			return nil, fmt.Errorf("products: %w", err)
		}
		ingredients, err := readStringList(g["ingredients"])
		if err != nil {
			return nil, fmt.Errorf("ingredients: %w", err)
		}
		dependsOn, err := readIntList(g["depends_on"])
		if err != nil {
			return nil, fmt.Errorf("depends_on: %w", err)
		}
		resp.SubGraphs = append(resp.SubGraphs, queries.SubGraphDTO{
			ID:          int(id),
			RecipeIDs:   recipeIDs,
			Products:    products,
			Ingredients: ingredients,
			Complex:     complexGroup,
			Depth:       int(depth),
			DependsOn:   dependsOn,
		})
	}

	rawMerges, _ := m["merge_groups"].([]interface{})
	for _, raw := range rawMerges {
		group, err := readStringList(raw)
		if err != nil {
			return nil, fmt.Errorf("merge_groups: %w", err)
		}
		resp.MergeGroups = append(resp.MergeGroups, group)
	}
	return resp, nil
}

func requirementToMap(n *planning.Requirement) map[string]interface{} {
	children := make([]interface{}, 0, len(n.Children))
	for _, child := range n.Children {
		children = append(children, requirementToMap(child))
	}
	out := map[string]interface{}{
		"name":      n.Name,
		"amount":    n.Amount,
		"recipe_id": n.RecipeID,
		"method":    string(n.Method),
		"children":  children,
	}
	if n.Resource.ID != "" {
		out["resource"] = n.Resource.String()
	}
	return out
}

func requirementFromValue(v interface{}) (*planning.Requirement, error) {
	m, ok := v.(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("expected object, got %T", v)
	}
	node := &planning.Requirement{Children: make([]*planning.Requirement, 0)}
	if ref, ok := m["resource"].(string); ok && ref != "" {
		key, err := production.ParseResourceKey(ref)
		if err != nil {
			return nil, err
		}
		node.Resource = key
	}
	node.Name, _ = m["name"].(string)
	node.Amount, _ = m["amount"].(float64)
	node.RecipeID, _ = m["recipe_id"].(string)
	method, _ := m["method"].(string)
	node.Method = planning.RequirementMethod(method)

	children, _ := m["children"].([]interface{})
	for _, raw := range children {
		child, err := requirementFromValue(raw)
		if err != nil {
			return nil, err
		}
		node.AddChild(child)
	}
	return node, nil
}

func reportToMap(r *services.PlanReport) map[string]interface{} {
	recipes := make([]interface{}, 0, len(r.Recipes))
	for _, line := range r.Recipes {
		recipes = append(recipes, map[string]interface{}{
			"recipe_id": line.RecipeID,
			"rate":      line.Rate,
			"producer":  line.Producer,
			"machines":  line.Machines,
			"power_kw":  line.PowerKW,
		})
	}
	return map[string]interface{}{
		"recipes":        recipes,
		"raw_inputs":     resourceLines(r.RawInputs),
		"unresolved":     resourceLines(r.Unresolved),
		"waste":          resourceLines(r.Waste),
		"total_machines": r.TotalMachines,
		"total_power_kw": r.TotalPowerKW,
	}
}

func reportFromValue(v interface{}) (*services.PlanReport, error) {
	m, ok := v.(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("expected object, got %T", v)
	}
	report := &services.PlanReport{}
	report.TotalMachines, _ = m["total_machines"].(float64)
	report.TotalPowerKW, _ = m["total_power_kw"].(float64)

	rawRecipes, _ := m["recipes"].([]interface{})
	for _, raw := range rawRecipes {
		line, ok := raw.(map[string]interface{})
		if !ok {
			return nil, fmt.Errorf("recipes: expected object, got %T", raw)
		}
		var rl services.RecipeLine
		rl.RecipeID, _ = line["recipe_id"].(string)
		rl.Rate, _ = line["rate"].(float64)
		rl.Producer, _ = line["producer"].(string)
		rl.Machines, _ = line["machines"].(float64)
		rl.PowerKW, _ = line["power_kw"].(float64)
		report.Recipes = append(report.Recipes, rl)
	}

	var err error
	if report.RawInputs, err = readResourceLines(m["raw_inputs"]); err != nil {
		return nil, fmt.Errorf("raw_inputs: %w", err)
	}
	if report.Unresolved, err = readResourceLines(m["unresolved"]); err != nil {
		return nil, fmt.Errorf("unresolved: %w", err)
	}
	if report.Waste, err = readResourceLines(m["waste"]); err != nil {
		return nil, fmt.Errorf("waste: %w", err)
	}
	return report, nil
}

func resourceLines(lines []services.ResourceLine) []interface{} {
	out := make([]interface{}, 0, len(lines))
	for _, line := range lines {
		out = append(out, map[string]interface{}{
			"resource": line.Resource.String(),
			"name":     line.Name,
			"amount":   line.Amount,
		})
	}
	return out
}

func readResourceLines(v interface{}) ([]services.ResourceLine, error) {
	raw, _ := v.([]interface{})
	out := make([]services.ResourceLine, 0, len(raw))
	for _, item := range raw {
		m, ok := item.(map[string]interface{})
		if !ok {
			return nil, fmt.Errorf("expected object, got %T", item)
		}
		ref, _ := m["resource"].(string)
		key, err := production.ParseResourceKey(ref)
		if err != nil {
			return nil, err
		}
		line := services.ResourceLine{Resource: key}
		line.Name, _ = m["name"].(string)
		line.Amount, _ = m["amount"].(float64)
		out = append(out, line)
	}
	return out, nil
}

func floatMap(m map[string]float64) map[string]interface{} {
	out := make(map[string]interface{}, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func keyedFloatMap(m map[production.ResourceKey]float64) map[string]interface{} {
	out := make(map[string]interface{}, len(m))
	for k, v := range m {
		out[k.String()] = v
	}
	return out
}

func stringList(values []string) []interface{} {
	out := make([]interface{}, 0, len(values))
	for _, v := range values {
		out = append(out, v)
	}
	return out
}

func intList(values []int) []interface{} {
	out := make([]interface{}, 0, len(values))
	for _, v := range values {
		out = append(out, float64(v))
	}
	return out
}

// readIntList always returns a non-nil slice so empty lists survive a round trip
func readIntList(v interface{}) ([]int, error) {
	out := make([]int, 0)
	if v == nil {
		return out, nil
	}
	raw, ok := v.([]interface{})
	if !ok {
		return nil, fmt.Errorf("expected list, got %T", v)
	}
	for _, item := range raw {
		n, ok := item.(float64)
		if !ok {
			return nil, fmt.Errorf("expected number, got %T", item)
		}
		out = append(out, int(n))
	}
	return out, nil
}

func readFloatMap(v interface{}) (map[string]float64, error) {
	out := make(map[string]float64)
	if v == nil {
		return out, nil
	}
	m, ok := v.(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("expected object, got %T", v)
	}
	for k, raw := range m {
		f, ok := raw.(float64)
		if !ok {
			return nil, fmt.Errorf("%s: expected number, got %T", k, raw)
		}
		out[k] = f
	}
	return out, nil
}

func readKeyedFloatMap(v interface{}) (map[production.ResourceKey]float64, error) {
	plain, err := readFloatMap(v)
	if err != nil {
		return nil, err
	}
	refs := make([]string, 0, len(plain))
	for ref := range plain {
		refs = append(refs, ref)
	}
	sort.Strings(refs)

	out := make(map[production.ResourceKey]float64, len(plain))
	for _, ref := range refs {
		key, err := production.ParseResourceKey(ref)
		if err != nil {
			return nil, err
		}
		out[key] = plain[ref]
	}
	return out, nil
}

func readStringList(v interface{}) ([]string, error) {
	if v == nil {
		return nil, nil
	}
	raw, ok := v.([]interface{})
	if !ok {
		return nil, fmt.Errorf("expected list, got %T", v)
	}
	out := make([]string, 0, len(raw))
	for _, item := range raw {
		s, ok := item.(string)
		if !ok {
			return nil, fmt.Errorf("expected string, got %T", item)
		}
		out = append(out, s)
	}
	return out, nil
}
