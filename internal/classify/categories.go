// Package classify maps raw vendor categories and titles to the standard
// gsau category set and filters out non-gel-blaster listings. Pure lookup
// tables; no state.
package classify

import "strings"

const Uncategorized = "Uncategorized"

// categoryMap normalizes messy vendor category strings. Empty values mean the
// vendor category is marketing noise and title-based classification decides.
var categoryMap = map[string]string{
	"gel blaster": "Blasters", "blaster": "Blasters", "gel blasters": "Blasters",
	"stock blasters": "Blasters", "custom blasters": "Blasters", "blaster - upgraded": "Blasters",
	"rifle": "Rifles", "rifles": "Rifles", "blaster - rifle": "Rifles",
	"gel blaster rifle": "Rifles", "assault rifles": "Rifles", "ar series": "Rifles",
	"ak series": "Rifles", "hk416 series": "Rifles", "scar series": "Rifles",
	"pistol": "Pistols", "pistols": "Pistols", "blaster - pistol": "Pistols",
	"gel blaster pistol": "Pistols", "gas pistols": "Pistols", "gas pistol": "Pistols",
	"gbb": "Pistols", "gbb / pistols": "Pistols", "revolver": "Pistols", "1911 series": "Pistols",
	"smg": "SMGs", "smgs": "SMGs", "gel blaster smg": "SMGs", "mp5 series": "SMGs",
	"shotgun": "Shotguns", "shotguns": "Shotguns", "blaster - shotgun": "Shotguns",
	"sniper": "Snipers", "snipers & dmr": "Snipers", "blaster - sniper": "Snipers",
	"lmg": "LMGs", "gel blaster light machine gun": "LMGs",
	"spare parts": "Parts", "internal parts": "Parts", "internals": "Parts",
	"externals": "Parts", "external parts": "Parts", "upgrades": "Parts",
	"gel blaster parts": "Parts", "other parts": "Parts", "replacement parts": "Parts",
	"pistol parts": "Pistol Parts", "pistol parts & tools": "Pistol Parts",
	"gbbr parts": "GBBR Parts", "hpa parts": "HPA Parts", "hpa accessories": "HPA Parts",
	"gearbox": "Gearboxes", "gearboxes": "Gearboxes", "gears": "Gearboxes", "gear sets": "Gearboxes",
	"magazine": "Magazines", "magazines": "Magazines", "rifle magazine": "Magazines",
	"pistol magazine": "Magazines", "magazines &amp; drums": "Magazines",
	"hopup": "Hopups", "hop ups": "Hopups", "t-piece": "Hopups",
	"motor": "Motors", "motors": "Motors", "gel blaster motors": "Motors",
	"battery": "Batteries", "batteries": "Batteries", "charger": "Batteries",
	"chargers": "Batteries", "batteries and chargers": "Batteries",
	"spring": "Springs", "springs": "Springs", "spring guide": "Springs", "spring kit": "Springs",
	"trigger": "Triggers", "triggers": "Triggers",
	"piston": "Internals", "cylinder": "Internals", "nozzle": "Internals",
	"tappet plate": "Internals", "o-rings": "Internals", "shims": "Internals",
	"bushes and bearings": "Internals", "bushings & bearings": "Internals",
	"inner barrel": "Barrels", "outer barrel": "Barrels", "barrel": "Barrels",
	"barrels and outer barrels": "Barrels",
	"stock": "Stocks", "stocks": "Stocks", "buttstock": "Stocks", "buffer tube": "Stocks",
	"handguard": "Handguards", "handguards": "Handguards",
	"grip": "Grips", "grips": "Grips", "pistol grip": "Grips", "foregrip": "Grips",
	"receiver": "Receivers", "receivers": "Receivers", "lower receiver": "Receivers",
	"accessories": "Accessories", "attachments": "Accessories", "speed loader": "Accessories",
	"accessories for gel blasters": "Accessories", "general": "Accessories",
	"tactical gear": "Tactical Gear", "tac gear": "Tactical Gear", "vest": "Tactical Gear",
	"chest rig": "Tactical Gear", "helmet": "Tactical Gear", "helmets": "Tactical Gear",
	"scope": "Optics", "scopes": "Optics", "sight": "Optics", "sights": "Optics",
	"red dot": "Optics", "scope mount": "Optics", "sights / scopes": "Optics",
	"suppressor": "Muzzle Devices", "flash hider": "Muzzle Devices",
	"flash hiders": "Muzzle Devices", "silencers": "Muzzle Devices", "tracer unit": "Muzzle Devices",
	"torch": "Lights & Lasers", "flashlight": "Lights & Lasers", "flash light": "Lights & Lasers",
	"flashlights & lasers": "Lights & Lasers",
	"holster": "Holsters & Bags", "holsters": "Holsters & Bags", "pouch": "Holsters & Bags",
	"bags and backpacks": "Holsters & Bags", "hard case": "Holsters & Bags", "case": "Holsters & Bags",
	"sling": "Slings", "slings": "Slings",
	"rails": "Rails", "rail mount": "Rails", "rails & riser": "Rails",
	"bipod": "Bipods", "rifle bipod": "Bipods",
	"hpa": "HPA", "hpa engine": "HPA", "regulator": "HPA", "wolverine": "HPA",
	"gel balls": "Gel Balls", "gel ball": "Gel Balls", "gelballs": "Gel Balls",
	"gel": "Gel Balls", "gels": "Gel Balls", "ammo": "Gel Balls", "gel ammo": "Gel Balls",
	"gel ball ammunition": "Gel Balls", "gel blaster ammunition": "Gel Balls",
	"safety glasses": "Safety Gear", "goggles": "Safety Gear", "face mask": "Safety Gear",
	"mask": "Safety Gear", "gloves": "Safety Gear", "eye protection": "Safety Gear",
	"face protection": "Safety Gear", "body protection": "Safety Gear",
	"green gas / co2 essentials": "Gas & CO2", "gas & co2": "Gas & CO2",
	"wiring & mosfets": "Electronics", "mosfet": "Electronics", "mosfets": "Electronics",
	"maintenance tool": "Tools", "tool kit": "Tools", "hobby tool": "Tools",
	"grenade": "Grenades", "grenade launcher": "Grenades", "grenades & claymores": "Grenades",
	// Marketing categories fall back to title classification.
	"new arrivals": "", "new arrival": "", "clearance": "", "sale": "",
	"best selling products": "", "products": "",
}

// titleRules classify by title keywords when the vendor category is unusable.
// Order matters: more specific patterns come first.
var titleRules = []struct {
	keyword  string
	category string
}{
	{"gel ball", "Gel Balls"},
	{"gels ", "Gel Balls"},
	{"magazine", "Magazines"},
	{"drum mag", "Magazines"},
	{"gearbox", "Gearboxes"},
	{"hop up", "Hopups"},
	{"hopup", "Hopups"},
	{"t-piece", "Hopups"},
	{"inner barrel", "Barrels"},
	{"outer barrel", "Barrels"},
	{"battery", "Batteries"},
	{"charger", "Batteries"},
	{"motor", "Motors"},
	{"spring", "Springs"},
	{"trigger", "Triggers"},
	{"suppressor", "Muzzle Devices"},
	{"flash hider", "Muzzle Devices"},
	{"tracer", "Muzzle Devices"},
	{"scope", "Optics"},
	{"red dot", "Optics"},
	{"sight", "Optics"},
	{"holster", "Holsters & Bags"},
	{"sling", "Slings"},
	{"bipod", "Bipods"},
	{"handguard", "Handguards"},
	{"receiver", "Receivers"},
	{"pistol grip", "Grips"},
	{"foregrip", "Grips"},
	{"goggles", "Safety Gear"},
	{"safety glasses", "Safety Gear"},
	{"vest", "Tactical Gear"},
	{"helmet", "Tactical Gear"},
	{"grenade", "Grenades"},
	{"sniper", "Snipers"},
	{"shotgun", "Shotguns"},
	{"smg", "SMGs"},
	{"pistol", "Pistols"},
	{"rifle", "Rifles"},
	{"blaster", "Blasters"},
	{"gbb", "Pistols"},
}

// BestCategory resolves the standard category for a listing: the vendor
// category map wins, then title keywords, then tag keywords, then any extra
// text (e.g. description snippets). Falls back to Uncategorized.
func BestCategory(rawCategory, title string, tags []string, extra ...string) string {
	raw := strings.ToLower(strings.TrimSpace(rawCategory))
	if mapped, ok := categoryMap[raw]; ok {
		if mapped != "" {
			return mapped
		}
	} else if raw != "" {
		// Unknown vendor category: try keyword rules against it too.
		if c := byKeywords(raw); c != "" {
			return c
		}
	}

	if c := byKeywords(strings.ToLower(title)); c != "" {
		return c
	}
	for _, tag := range tags {
		if mapped, ok := categoryMap[strings.ToLower(strings.TrimSpace(tag))]; ok && mapped != "" {
			return mapped
		}
	}
	for _, text := range extra {
		if c := byKeywords(strings.ToLower(text)); c != "" {
			return c
		}
	}

	return Uncategorized
}

func byKeywords(text string) string {
	for _, rule := range titleRules {
		if strings.Contains(text, rule.keyword) {
			return rule.category
		}
	}
	return ""
}
