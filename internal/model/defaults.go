package model

import "fmt"

// DefaultCases returns the built-in feasibility cases in match order
func DefaultCases() []Case {
	easy := Range{Min: 51, Max: 100}
	medium := Range{Min: 20, Max: 50}
	hard := Range{Min: 1, Max: 19}
	small := Range{Min: 1, Max: 300}
	mid := Range{Min: 301, Max: 800}
	large := Range{Min: 801, Max: 10000}
	short := Range{Min: 1, Max: 9}
	average := Range{Min: 10, Max: 15}
	long := Range{Min: 16, Max: 60}

	newCase := func(order int, name, difficulty string, ir, sample, loi Range, quota QuotaType, hardTarget bool, spd float64, minDays, maxDays int, suggestions ...string) Case {
		if suggestions == nil {
			suggestions = []string{}
		}
		return Case{
			ID:         fmt.Sprintf("case_%d", order),
			Name:       name,
			Order:      order,
			Difficulty: difficulty,
			Conditions: Conditions{
				IR:         ir,
				Sample:     sample,
				LOI:        loi,
				Quota:      quota,
				HardTarget: hardTarget,
			},
			SamplesPerDay: spd,
			FWDaysMin:     minDays,
			FWDaysMax:     maxDays,
			Suggestions:   suggestions,
		}
	}

	return []Case{
		newCase(1, "Easy (Simple)", "Easy", easy, small, short, QuotaSimple, false, 100, 3, 4),
		newCase(2, "Medium (Simple)", "Medium", medium, mid, average, QuotaSimple, false, 70, 5, 7),
		newCase(3, "Hard (Simple)", "Hard", hard, large, long, QuotaSimple, false, 50, 8, 10),
		newCase(4, "Easy (Nested)", "Easy", easy, small, short, QuotaNested, false, 80, 4, 5),
		newCase(5, "Medium (Nested)", "Medium", medium, mid, average, QuotaNested, false, 60, 6, 8,
			"Nested quotas may struggle to fill the last cells"),
		newCase(6, "Hard (Nested)", "Hard", hard, large, long, QuotaNested, false, 40, 10, 12),
		newCase(7, "Easy + medium LOI", "Easy (+)", easy, small, average, QuotaSimple, false, 90, 4, 5),
		newCase(8, "Medium + long LOI", "Medium (+)", medium, mid, long, QuotaSimple, false, 60, 7, 9,
			"Long LOI, drop-off rate may be high"),
		newCase(9, "Hard + long LOI + Nested", "Very hard", hard, large, long, QuotaNested, false, 35, 12, 14,
			"Consider splitting fieldwork into phases"),
		newCase(10, "Easy + hard target", "Hard (target)", easy, small, short, QuotaSimple, true, 70, 5, 6,
			"Hard target, check feasibility with the vendor"),
		newCase(11, "Medium + hard target (Nested)", "Very hard (target)", medium, mid, average, QuotaNested, true, 45, 8, 10,
			"Hard target combined with nested quotas, high risk"),
		newCase(12, "Hard + hard target (Nested)", "Extreme", hard, large, long, QuotaNested, true, 25, 15, 18,
			"Extremely hard, negotiate the timeline carefully with the PM"),
	}
}

// DefaultLocations returns the built-in Vietnamese locations across the
// four classification schemes
func DefaultLocations() []Location {
	loc := func(id, name string, category LocationCategory, tier int, ir, irMin, irMax, spd, difficulty float64, notes string) Location {
		return Location{
			ID:               id,
			Name:             name,
			Category:         category,
			Tier:             tier,
			DefaultIR:        ir,
			IRRange:          Range{Min: irMin, Max: irMax},
			SamplesPerDay:    spd,
			DifficultyFactor: difficulty,
			Notes:            notes,
		}
	}

	return []Location{
		// Cities, tiered by online panel penetration
		loc("hcm", "TP. Hồ Chí Minh", CategoryCity, 1, 45, 40, 50, 150, 0.85, "Very easy, large panel"),
		loc("hanoi", "Hà Nội", CategoryCity, 1, 45, 40, 50, 150, 0.85, "Very easy, large panel"),
		loc("danang", "Đà Nẵng", CategoryCity, 2, 35, 30, 40, 100, 1.0, "Fairly easy"),
		loc("haiphong", "Hải Phòng", CategoryCity, 2, 35, 30, 40, 100, 1.0, "Fairly easy"),
		loc("cantho", "Cần Thơ", CategoryCity, 2, 30, 25, 35, 80, 1.1, "Average"),
		loc("binhduong", "Bình Dương", CategoryCity, 3, 25, 20, 30, 60, 1.2, "Many factory workers"),
		loc("dongnai", "Đồng Nai", CategoryCity, 3, 25, 20, 30, 60, 1.2, "Densely populated"),
		loc("khanhhoa", "Khánh Hòa (Nha Trang)", CategoryCity, 3, 25, 20, 30, 50, 1.25, "Tourism hub"),
		loc("nghean", "Nghệ An", CategoryCity, 3, 20, 15, 25, 40, 1.35, "Large population, lower online reach"),
		loc("thanhhoa", "Thanh Hóa", CategoryCity, 3, 20, 15, 25, 40, 1.35, "Large population"),
		loc("mekong_delta", "ĐBSCL (other provinces)", CategoryCity, 4, 15, 10, 20, 30, 1.5, "Low, harder to reach"),
		loc("north_mountain", "Tây Bắc / Đông Bắc", CategoryCity, 4, 10, 5, 15, 20, 1.8, "Very hard to reach online"),
		loc("central_highlands", "Tây Nguyên", CategoryCity, 4, 12, 8, 18, 25, 1.6, "Low"),

		// CCI classification
		loc("cci_hcm", "Ho Chi Minh (CCI)", CategoryCCI, 1, 45, 40, 50, 150, 0.85, "CCI: largest city"),
		loc("cci_hanoi", "Ha Noi (CCI)", CategoryCCI, 1, 45, 40, 50, 150, 0.85, "CCI: capital"),
		loc("cci_secondary_city", "Secondary City", CategoryCCI, 2, 30, 25, 38, 80, 1.15, "CCI: second tier cities (Đà Nẵng, Cần Thơ...)"),
		loc("cci_southeast_rural", "Southeast Rural", CategoryCCI, 3, 22, 18, 28, 50, 1.35, "CCI: rural South East"),
		loc("cci_mekong_rural", "Mekong River Delta Rural", CategoryCCI, 3, 18, 12, 25, 40, 1.45, "CCI: rural Mekong delta"),
		loc("cci_north_rural", "North Rural", CategoryCCI, 4, 15, 10, 22, 35, 1.55, "CCI: rural North"),
		loc("cci_central_rural", "Central Rural", CategoryCCI, 4, 15, 10, 22, 35, 1.55, "CCI: rural Central"),

		// GSO classification
		loc("gso_urban_t1", "Urban T1", CategoryGSO, 1, 45, 40, 50, 150, 0.85, "GSO: tier 1 urban (HCM, HN)"),
		loc("gso_urban_t2", "Urban T2", CategoryGSO, 2, 32, 25, 40, 90, 1.1, "GSO: tier 2 and 3 urban"),
		loc("gso_rural", "Rural", CategoryGSO, 3, 18, 12, 25, 40, 1.5, "GSO: rural"),

		// Three regions
		loc("region_north", "Miền Bắc", CategoryRegion, 2, 35, 28, 42, 100, 1.05, "North, including Hà Nội"),
		loc("region_central", "Miền Trung", CategoryRegion, 3, 25, 18, 32, 60, 1.3, "Central, including Đà Nẵng"),
		loc("region_south", "Miền Nam", CategoryRegion, 1, 40, 32, 48, 120, 0.9, "South, including HCM"),
	}
}

// DefaultPanelVendors returns the built-in panel vendors
func DefaultPanelVendors() []PanelVendor {
	return []PanelVendor{
		{
			ID: "ifm", Name: "Panel IFM", Order: 1,
			ResponseFactor: 0.7, DefaultQCReject: 0.05, IsInternal: true,
			Pros:        []string{"High recontact", "Good quality"},
			Cons:        []string{"Low response rate"},
			Description: "In-house panel",
		},
		{
			ID: "purespectrum", Name: "Purespectrum", Order: 2,
			ResponseFactor: 1.4, DefaultQCReject: 0.45,
			Pros:        []string{"High response rate", "Fast setup", "Cheap (self-serve)"},
			Cons:        []string{"Many cheaters", "QC rejects 40-50%"},
			Description: "Self-serve vendor",
		},
		{
			ID: "opinionmind", Name: "Opinionmind", Order: 3,
			ResponseFactor: 1.0, DefaultQCReject: 0.15,
			Pros:        []string{"Accurate targeting", "Decent volume"},
			Cons:        []string{"CPI bidding", "Expensive", "Quota updates by email"},
			Description: "Vendor, CPI negotiated by bidding",
		},
		{
			ID: "paneland", Name: "Paneland", Order: 4,
			ResponseFactor: 1.2, DefaultQCReject: 0.15,
			Pros:        []string{"High response rate", "Decent to high volume"},
			Cons:        []string{"CPI bidding", "Expensive", "Unstable", "Quota updates by email"},
			Description: "Vendor, CPI negotiated by bidding",
		},
		{
			ID: "infosec", Name: "Infosec", Order: 5,
			ResponseFactor: 0.9, DefaultQCReject: 0.15,
			Pros:        []string{"Fair response rate", "New vendor"},
			Cons:        []string{"CPI bidding", "Expensive", "Quota updates by email"},
			Description: "New vendor",
		},
		{
			ID: "fulcrum", Name: "Fulcrum (Cint)", Order: 6,
			ResponseFactor: 1.3, DefaultQCReject: 0.20,
			Pros:        []string{"High response rate", "Decent volume", "Fast self-serve setup"},
			Cons:        []string{"Expensive (yearly prepayment)", "CPI margin risk on management fees"},
			Description: "Self-serve vendor, prepaid",
		},
	}
}

// DefaultTargetAudiences returns the built-in target audiences
func DefaultTargetAudiences() []TargetAudience {
	audience := func(order int, id, name string, irFactor, difficulty float64, description string) TargetAudience {
		return TargetAudience{
			ID:                   id,
			Name:                 name,
			Order:                order,
			IRFactor:             irFactor,
			DifficultyMultiplier: difficulty,
			Description:          description,
		}
	}

	return []TargetAudience{
		audience(1, GeneralAudience, "General Population", 1.0, 1.0, "General population, baseline"),
		audience(2, "youth", "Gen Z / Youth (16-24)", 0.8, 1.2, "Students and young adults aged 16-24"),
		audience(3, "moms_baby", "Moms with Babies (0-3)", 0.5, 1.4, "Mothers of children aged 0-3"),
		audience(4, "kids_parents", "Parents of Kids (4-12)", 0.5, 1.3, "Parents of children aged 4-12"),
		audience(5, "senior", "Senior (55+)", 0.5, 1.6, "Adults over 55, slower to respond"),
		audience(6, "high_income", "High Income (Class A)", 0.35, 1.9, "Affluent consumers, need large incentives"),
		audience(7, "car_owners", "Car Owners", 0.4, 1.5, "Car owners, need careful verification"),
		audience(8, "gamers", "Gamers (Mobile/PC)", 0.8, 1.1, "Regular players, quick to respond online"),
		audience(9, "investors", "Investors (Stock/Crypto)", 0.3, 1.6, "Stock and financial investors"),
		audience(10, "smokers", "Smokers", 0.6, 1.3, "Tobacco smokers"),
		audience(11, "alcohol", "Beer/Alcohol Drinkers", 0.7, 1.2, "Beer and spirits drinkers"),
		audience(12, "sme_decision", "SME Decision Makers", 0.2, 2.2, "SME owners and purchase decision makers"),
		audience(13, "healthcare_pro", "HCP (Healthcare Pro)", 0.1, 2.5, "Doctors, pharmacists and health experts"),
	}
}

// DefaultQuotaSkewOptions returns the built-in quota skew profiles
func DefaultQuotaSkewOptions() []QuotaSkewOption {
	return []QuotaSkewOption{
		{
			ID: SkewBalanced, Name: "Balanced", Order: 1, Multiplier: 1.0,
			Description: "Even split, ages spread evenly",
			Examples:    []string{"Male/Female 50/50", "Age 18-55 even"},
		},
		{
			ID: SkewLight, Name: "Light skew", Order: 2, Multiplier: 1.15,
			Description: "70/30 or a slight imbalance",
			Examples:    []string{"Female 70%", "Age 25-35 is 60%"},
		},
		{
			ID: SkewHeavy, Name: "Heavy skew", Order: 3, Multiplier: 1.4,
			Description: "Very narrow target, hard to fill",
			Examples:    []string{"High income females 45-50", "B2B decision makers"},
		},
	}
}

// DefaultTimingConfig returns the built-in weekday and holiday multipliers
func DefaultTimingConfig() TimingConfig {
	return TimingConfig{
		// Sunday through Saturday
		DayFactors: [7]float64{1.10, 0.85, 0.85, 1.0, 1.0, 0.95, 1.10},
		HolidayFactors: map[string]float64{
			HolidayNewYear:             1.1,
			HolidayReunificationLabour: 1.25,
			HolidayHungKings:           1.1,
			HolidayNationalDay:         1.15,
			HolidayChristmas:           1.1,
			HolidayTet:                 1.8,
		},
	}
}

// DefaultTemplates returns the built-in project templates
func DefaultTemplates() []Template {
	template := func(order int, id, name, description string, sample int, ir float64, loi int, quota QuotaType, hardTarget bool, audience string, locations ...string) Template {
		return Template{
			ID:          id,
			Name:        name,
			Order:       order,
			Description: description,
			Defaults: TemplateDefault{
				SampleSize:     sample,
				IR:             ir,
				LOI:            loi,
				Quota:          quota,
				HardTarget:     hardTarget,
				Locations:      locations,
				TargetAudience: audience,
			},
		}
	}

	return []Template{
		template(1, "brand_health", "Brand Health Check", "Periodic brand health tracking", 500, 40, 15, QuotaNested, false, GeneralAudience),
		template(2, "product_test", "Product Concept Test", "New product concept test", 300, 50, 10, QuotaSimple, false, GeneralAudience, "hcm"),
		template(3, "ad_testing", "Ad Testing", "Ad and TVC testing", 200, 60, 8, QuotaSimple, false, GeneralAudience, "hcm"),
		template(4, "ua_study", "U&A Study", "Usage and attitude study", 600, 35, 20, QuotaNested, false, GeneralAudience),
		template(5, "customer_satisfaction", "Customer Satisfaction", "Customer satisfaction survey", 400, 45, 12, QuotaSimple, false, GeneralAudience),
		template(6, "b2b_decision_makers", "B2B Decision Makers", "Business leaders survey", 100, 10, 20, QuotaSimple, true, "sme_decision"),
		template(7, "healthcare_hcp", "Healthcare Professionals", "Doctors and pharmacists survey", 50, 5, 25, QuotaSimple, true, "healthcare_pro"),
		template(99, "custom", "Custom", "Enter parameters manually", 300, 30, 15, QuotaSimple, false, GeneralAudience, "hcm"),
	}
}
