package seed

import "fakie/cmd/internal/catalog"

func str(s string) *string { return &s }
func num(n int) *int       { return &n }

var demoSpots = []demoRecord[catalog.SpotInput]{
	{owner: "mike", in: catalog.SpotInput{
		Name:        str("Riverside DIY"),
		Location:    str("East Side, Downtown"),
		Description: str("[Type: DIY / Street] Handbuilt quarter pipes and rails. Chill vibe, good lighting till 9pm. Perfect for evening sessions."),
		Difficulty:  str("medium"),
		ImageURL:    str("https://images.unsplash.com/photo-1593950404789-b4f0c865fb68?auto=format&fit=crop&q=80&w=1080"),
	}},
	{owner: "admin", in: catalog.SpotInput{
		Name:        str("Lincoln Skatepark"),
		Location:    str("Downtown Central"),
		Description: str("[Type: Park] All concrete, bowl and street sections. Gets crowded on weekends but worth it. Pro-level features."),
		Difficulty:  str("hard"),
		ImageURL:    str("https://images.unsplash.com/photo-1547447134-cd3f5c716030?auto=format&fit=crop&q=80&w=1080"),
	}},
	{owner: "tony", in: catalog.SpotInput{
		Name:        str("3rd Ave Plaza"),
		Location:    str("North District"),
		Description: str("[Type: Street Spot] Smooth ground, ledges, and stairs. Watch out for security after 6pm. Classic street spot."),
		Difficulty:  str("medium"),
		ImageURL:    str("https://images.unsplash.com/photo-1564982752979-d8f69c6e34f3?auto=format&fit=crop&q=80&w=1080"),
	}},
	{owner: "mike", in: catalog.SpotInput{
		Name:        str("Sunset Ramps"),
		Location:    str("West End Beach"),
		Description: str("[Type: Park] Best transitions in town. Sunset sessions are magical here. Bring your camera!"),
		Difficulty:  str("hard"),
		ImageURL:    str("https://images.unsplash.com/photo-1593950404788-b7c9c72e589b?auto=format&fit=crop&q=80&w=1080"),
	}},
	{owner: "admin", in: catalog.SpotInput{
		Name:        str("Market Street Banks"),
		Location:    str("Central Business District"),
		Description: str("[Type: Street Spot] Classic marble banks and gaps. Historic spot, respect the legacy. Legendary status."),
		Difficulty:  str("hard"),
		ImageURL:    str("https://images.unsplash.com/photo-1564982750957-f5e943146ea5?auto=format&fit=crop&q=80&w=1080"),
	}},
	{owner: "tony", in: catalog.SpotInput{
		Name:        str("Grove Community Park"),
		Location:    str("South Side Residential"),
		Description: str("[Type: Beginner Friendly] Perfect for learning. Flat ground and small obstacles. Great for kids and beginners."),
		Difficulty:  str("easy"),
		ImageURL:    str("https://images.unsplash.com/photo-1547447134-cd3f5c716030?auto=format&fit=crop&q=80&w=1080"),
	}},
}

var demoGear = []demoRecord[catalog.GearInput]{
	{owner: "mike", in: catalog.GearInput{
		Name:        str(`Street Classic 8.0"`),
		Category:    str("deck"),
		Brand:       str("Independent Skate Co."),
		Description: str("Perfect street deck with medium concave. Durable 7-ply maple construction. Ideal for technical skating and consistent pop."),
		Rating:      num(5),
		ImageURL:    str("https://images.unsplash.com/photo-1547447134-cd3f5c716030?auto=format&fit=crop&q=80&w=1080"),
	}},
	{owner: "admin", in: catalog.GearInput{
		Name:        str("Stage 11 Standard"),
		Category:    str("truck"),
		Brand:       str("Independent"),
		Description: str("Legendary trucks that have stood the test of time. Smooth turning, durable, and perfect for street and park. Industry standard for good reason."),
		Rating:      num(5),
		ImageURL:    str("https://images.unsplash.com/photo-1564982750957-f5e943146ea5?auto=format&fit=crop&q=80&w=1080"),
	}},
	{owner: "tony", in: catalog.GearInput{
		Name:        str("Spitfire Formula Four 52mm"),
		Category:    str("wheel"),
		Brand:       str("Spitfire"),
		Description: str("Fast, smooth, and flatspot-resistant. These wheels maintain speed while providing excellent grip. Perfect size for street and park."),
		Rating:      num(5),
		ImageURL:    str("https://images.unsplash.com/photo-1593950404788-b7c9c72e589b?auto=format&fit=crop&q=80&w=1080"),
	}},
	{owner: "mike", in: catalog.GearInput{
		Name:        str(`Welcome Moontrimmer 8.25"`),
		Category:    str("deck"),
		Brand:       str("Welcome Skateboards"),
		Description: str("Unique shape with excellent concave. Great for bowls and transitions. Artwork is fire and construction is top-tier."),
		Rating:      num(4),
		ImageURL:    str("https://images.unsplash.com/photo-1593950404789-b4f0c865fb68?auto=format&fit=crop&q=80&w=1080"),
	}},
	{owner: "tony", in: catalog.GearInput{
		Name:        str("Venture V-Light 5.2"),
		Category:    str("truck"),
		Brand:       str("Venture"),
		Description: str("Lightweight without sacrificing durability. Quick turning and responsive. Great for technical street skating."),
		Rating:      num(4),
		ImageURL:    str("https://images.unsplash.com/photo-1547447134-cd3f5c716030?auto=format&fit=crop&q=80&w=1080"),
	}},
	{owner: "admin", in: catalog.GearInput{
		Name:        str("Bones STF 53mm V5"),
		Category:    str("wheel"),
		Brand:       str("Bones"),
		Description: str("Street Tech Formula wheels are unmatched. Fast, slide-friendly, and virtually flatspot-proof. Essential for street skating."),
		Rating:      num(5),
		ImageURL:    str("https://images.unsplash.com/photo-1564982752979-d8f69c6e34f3?auto=format&fit=crop&q=80&w=1080"),
	}},
}
