package seed

import "github.com/ddhiman-alt/nearpaws/internal/models"

const (
	BaseLat = 12.9537754
	BaseLng = 77.7008752

	ShelterName     = "NearPaws Shelter"
	ShelterEmail    = "shelter@nearpaws.com"
	ShelterPassword = "password123"
	ShelterPhone    = "555-123-4567"
	ShelterAddress  = "MG Road"
	ShelterCity     = "Bangalore"
)

type place struct {
	city    string
	address string
	bearing float64
}

// ring is the set of places at one distance from the base point.
type ring struct {
	km     float64
	places [2]place
}

var rings = []ring{
	{2, [2]place{{"Indiranagar", "100 Feet Road", 45}, {"Koramangala", "80 Feet Road", 135}}},
	{5, [2]place{{"Whitefield", "ITPL Main Road", 90}, {"Electronic City", "Phase 1", 180}}},
	{10, [2]place{{"Yelahanka", "New Town", 0}, {"Bannerghatta", "Road Area", 170}}},
	{25, [2]place{{"Hosur", "Industrial Area", 150}, {"Devanahalli", "Airport Road", 30}}},
	{50, [2]place{{"Kolar", "Main Road", 70}, {"Tumkur", "City Center", 310}}},
	{100, [2]place{{"Mysore", "Sayyaji Rao Road", 220}, {"Vellore", "Fort Area", 110}}},
	{200, [2]place{{"Mangalore", "Hampankatta", 260}, {"Salem", "Junction Area", 130}}},
	{500, [2]place{{"Hyderabad", "Banjara Hills", 350}, {"Chennai", "T Nagar", 100}}},
}

// petSeed is a listing without its location. ring picks the distance and the
// position in the list picks the place within the ring.
type petSeed struct {
	name, species, breed string
	age                  models.Age
	gender, size, color  string
	description          string
	health               models.HealthInfo
	fee                  float64
	feeReason, contact   string
	ring                 int
}

func age(v float64, unit string) models.Age { return models.Age{Value: v, Unit: unit} }

func health(vaccinated, neutered bool, conditions string) models.HealthInfo {
	return models.HealthInfo{Vaccinated: vaccinated, Neutered: neutered, HealthConditions: conditions}
}

func (p petSeed) listing() models.Pet {
	return models.Pet{
		Name:              p.name,
		Species:           p.species,
		Breed:             p.breed,
		Age:               p.age,
		Gender:            p.gender,
		Size:              p.size,
		Color:             p.color,
		Description:       p.description,
		HealthInfo:        p.health,
		AdoptionFee:       p.fee,
		AdoptionFeeReason: p.feeReason,
		Status:            models.PetStatusAvailable,
		ContactPreference: p.contact,
	}
}

var pets = []petSeed{
	{
		"Buddy", "dog", "Golden Retriever", age(3, "years"), "male", "large", "Golden",
		"Buddy is a friendly and energetic Golden Retriever who loves to play fetch and go on long walks. He is great with kids and other dogs.",
		health(true, true, "None"), 150, "Rescued from the street. Vaccinations, deworming and a general checkup, plus food while fostering.", "both",
		0,
	},
	{
		"Max", "dog", "German Shepherd", age(4, "years"), "male", "large", "Black and Tan",
		"Max is a loyal and intelligent German Shepherd. He is well trained and would make an excellent companion for an active family.",
		health(true, true, "None"), 0, "", "phone",
		2,
	},
	{
		"Bella", "dog", "Labrador Retriever", age(5, "years"), "female", "large", "Chocolate",
		"Bella is a sweet and calm chocolate Lab. She loves swimming and is very gentle and patient, a perfect family dog.",
		health(true, true, "Mild hip dysplasia, managed with supplements"), 175, "Found injured on a highway. Emergency hip treatment and two months of supplements.", "both",
		3,
	},
	{
		"Rocky", "dog", "Boxer", age(2, "years"), "male", "large", "Brindle",
		"Rocky is a playful and goofy Boxer who loves to run. He has lots of energy and would thrive with an active owner.",
		health(true, true, "None"), 0, "", "phone",
		4,
	},
	{
		"Daisy", "dog", "Beagle", age(1, "years"), "female", "medium", "Tricolor",
		"Daisy is a curious and friendly Beagle puppy with an excellent nose. Great with children and other pets.",
		health(true, false, "None"), 80, "Puppy found abandoned. First round of vaccinations and microchipping.", "both",
		5,
	},
	{
		"Whiskers", "cat", "Maine Coon", age(2, "years"), "female", "medium", "Gray tabby",
		"Whiskers is a gentle and affectionate Maine Coon who loves to cuddle and enjoys sunny spots. Perfect for a quiet home.",
		health(true, true, "None"), 0, "", "email",
		1,
	},
	{
		"Luna", "cat", "Siamese", age(1, "years"), "female", "small", "Cream with dark points",
		"Luna is a talkative Siamese who will follow you around the house and tell you about her day.",
		health(true, false, "None"), 60, "Vaccinations and a vet checkup after rescue.", "both",
		2,
	},
	{
		"Oliver", "cat", "British Shorthair", age(4, "years"), "male", "medium", "Blue-gray",
		"Oliver is a laid back British Shorthair who enjoys naps and the occasional game with a string toy.",
		health(true, true, "None"), 0, "", "both",
		3,
	},
	{
		"Shadow", "cat", "Bombay", age(3, "years"), "male", "medium", "Black",
		"Shadow is a sleek and affectionate Bombay cat who loves laps and quiet evenings.",
		health(true, true, "None"), 0, "", "email",
		4,
	},
	{
		"Cleo", "cat", "Persian", age(5, "years"), "female", "medium", "White",
		"Cleo is a regal Persian who prefers a calm home. She needs daily brushing to keep her coat healthy.",
		health(true, true, "Requires daily brushing"), 100, "Grooming and dental treatment after surrender.", "both",
		5,
	},
	{
		"Tweety", "bird", "Cockatiel", age(2, "years"), "male", "small", "Gray with yellow head",
		"Tweety whistles tunes all day and loves to sit on shoulders.",
		health(false, false, "None"), 0, "", "both",
		1,
	},
	{
		"Sunny", "bird", "Sun Conure", age(3, "years"), "female", "small", "Orange and yellow",
		"Sunny is a bright and social conure who needs plenty of attention and toys.",
		health(false, false, "None"), 0, "", "both",
		2,
	},
	{
		"Rio", "bird", "Blue and Gold Macaw", age(8, "years"), "male", "large", "Blue and gold",
		"Rio is a talkative macaw who knows a dozen words. He needs an experienced bird owner and a large aviary.",
		health(false, false, "None"), 200, "Avian vet checkup and transport of his aviary.", "phone",
		6,
	},
	{
		"Pearl", "bird", "African Grey", age(5, "years"), "female", "medium", "Gray with red tail",
		"Pearl is a clever African Grey who enjoys puzzles and mimicking household sounds.",
		health(false, false, "None"), 0, "", "both",
		7,
	},
	{
		"Charlie", "rabbit", "Holland Lop", age(8, "months"), "male", "small", "White with brown spots",
		"Charlie is a floppy eared bunny who loves fresh greens and gentle pets.",
		health(true, true, "None"), 50, "Neutering and vaccinations.", "email",
		1,
	},
	{
		"Hazel", "rabbit", "Flemish Giant", age(3, "years"), "female", "large", "Sandy brown",
		"Hazel is a gentle giant who is litter trained and enjoys roaming a bunny proofed room.",
		health(true, true, "None"), 75, "Spaying and vaccinations.", "phone",
		5,
	},
	{
		"Nibbles", "hamster", "Syrian Hamster", age(6, "months"), "female", "small", "Golden",
		"Nibbles is a curious hamster who loves her wheel and stuffing her cheeks with seeds.",
		health(false, false, "None"), 0, "", "email",
		1,
	},
	{
		"Whiskey", "hamster", "Roborovski Dwarf", age(5, "months"), "male", "small", "Brown and white",
		"Whiskey is a tiny and speedy dwarf hamster, best for watching rather than handling.",
		health(false, false, "None"), 15, "Cage and bedding included.", "both",
		4,
	},
	{
		"Nemo", "fish", "Clownfish", age(1, "years"), "male", "small", "Orange and white",
		"Nemo is a hardy clownfish looking for a well established saltwater tank.",
		health(false, false, "None"), 0, "", "email",
		1,
	},
	{
		"Stripe", "fish", "Zebra Danio", age(6, "months"), "unknown", "small", "Silver with blue stripes",
		"Stripe is an active schooling fish that does best with a few friends.",
		health(false, false, "None"), 0, "", "both",
		7,
	},
}
