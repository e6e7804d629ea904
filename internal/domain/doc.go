// Package domain models city zones and the Heat Vulnerability Index (HVI)
// computed over them.
//
// # Zones
//
// A zone is one cell of the planning grid. It carries three groups of
// attributes, all stored under the GeoJSON feature's "properties":
//
//	demographics: pop_density (people/km²), seniors_pct, low_income_pct,
//	              social_isolation_risk
//	environment:  tree_canopy_pct, impervious_surface_pct,
//	              avg_surface_temp_summer (display only)
//	assets:       cooling_centres, libraries (libraries are display only)
//
// Every "_pct" value is a fraction in [0,1]. Scoring does not reject
// out-of-range values; only the final index is clamped. Mutations made by
// [ApplyIntervention] clamp the fields they touch.
//
// # Scoring
//
//	env     = (1 - tree_canopy_pct)·w.canopy + impervious_surface_pct·w.impervious
//	social  = seniors_pct·w.seniors + low_income_pct·w.income
//	relief  = cooling_centres · 0.15
//	hvi     = clamp((env + social)·severity_mult - relief, 0, 1)
//
// The breakdown returned alongside the index holds env and social before the
// scenario multiplier and cooling-centre relief are applied, rounded to two
// decimals. Charts render the breakdown; headline figures use hvi. The two are
// intentionally not reconcilable.
//
// # Interventions
//
// Tree planting converts units of trees into canopy cover at 0.02 per 100
// trees, capped at 0.8. Cooling centres add to the zone's centre count with no
// cap.
//
// # Recommendation
//
// [Optimize] is a single-pass greedy allocator. Each zone yields at most one
// tree-planting and one cooling-centre candidate, each estimated against the
// zone's unmodified baseline. Candidates are ranked by reduction per dollar and
// the budget is filled in one walk, skipping anything that no longer fits.
// Interactions between actions accepted in the same zone are not modelled.
package domain
