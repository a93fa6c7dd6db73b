package wanderlust

// DefaultData is the hardcoded first-run dataset. Every call returns a
// fresh copy so callers can mutate the result freely.
func DefaultData() AppData {
	return AppData{
		Trips: Collection{
			"indonesia-2024": {
				ID:         "indonesia-2024",
				Title:      "Indonesia",
				Date:       "2024",
				Location:   "Bali & Komodo",
				CoverImage: "assets/images/indonesia.png",
				Blocks: []Block{
					{Type: BlockText, Content: "Our trip to Indonesia was an awakening of the senses. From the spiritual aura of Bali's temples to the rugged, prehistoric landscapes of Komodo National Park, every moment felt like a scene from an adventure novel."},
					{Type: BlockText, Content: "We started in Ubud, surrounded by lush rice terraces and vibrant culture. The local artisans and the calmness of the water temples set the tone for the trip."},
					{Type: BlockImage, Content: "assets/images/indonesia.png"},
					{Type: BlockText, Content: "Then, we ventured east to the Komodo islands. Diving with manta rays and walking among the legendary Komodo dragons was a humbling reminder of nature's raw power."},
				},
			},
			"sea-2025": {
				ID:         "sea-2025",
				Title:      "South East Asia",
				Date:       "2025",
				Location:   "Thailand, Vietnam, Cambodia",
				CoverImage: "assets/images/sea.png",
				Blocks: []Block{
					{Type: BlockText, Content: "2025 marked our grand tour of South East Asia. It was a cacophony of street food, motorbike engines, and ancient history."},
					{Type: BlockText, Content: "Bangkok's energy was infectious. We got lost in the markets, ate the best Pad Thai of our lives, and marveled at the Grand Palace."},
					{Type: BlockImage, Content: "assets/images/sea.png"},
					{Type: BlockText, Content: "Vietnam offered a change of pace with the limestone karsts of Ha Long Bay and the lantern-lit streets of Hoi An."},
				},
			},
		},
		Recipes: Collection{},
	}
}
