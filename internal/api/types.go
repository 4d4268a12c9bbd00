package api

import "github.com/Nardi-Minardi/fews-be-sub001/internal/spatial"

// resolveResponse mirrors the resolver's nullable tuple; absent codes serialize as null.
type resolveResponse struct {
	DasID         *int64   `json:"das_id"`
	KabKotaCode   *string  `json:"kab_kota_code"`
	KecamatanCode *string  `json:"kecamatan_code"`
	KelDesCode    *string  `json:"kel_des_code"`
	Resolved      bool     `json:"resolved"`
	Tier          string   `json:"tier"`
	DistanceM     *float64 `json:"distance_m,omitempty"`
	Approx        bool     `json:"approx,omitempty"`
	IP            string   `json:"ip,omitempty"`
}

func newResolveResponse(r spatial.Resolution) resolveResponse {
	out := resolveResponse{Resolved: r.Resolved, Tier: string(r.Tier)}
	if !r.Resolved {
		if out.Tier == "" {
			out.Tier = string(spatial.TierUnresolved)
		}
		return out
	}
	id := r.PolygonID
	out.DasID = &id
	out.KabKotaCode = nullable(r.KabKotaCode)
	out.KecamatanCode = nullable(r.KecamatanCode)
	out.KelDesCode = nullable(r.KelDesCode)
	if r.Tier == spatial.TierNearest {
		d := r.DistanceM
		out.DistanceM = &d
	}
	return out
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

type statsResponse struct {
	Polygons  int64            `json:"polygons"`
	Hierarchy map[string]int64 `json:"hierarchy,omitempty"`
}
