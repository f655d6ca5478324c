package workouts

import "slices"

// Category groups workouts in the catalog. Colour is only a display hint.
type Category struct {
	Name      string   `json:"name"`
	Color     string   `json:"color"`
	Exercises []string `json:"exercises"`
}

var builtinCategories = []Category{
	{
		Name:  "Chest Exercises",
		Color: "brown",
		Exercises: []string{"Standard Push-Ups", "Wide Push-Ups", "Diamond Push-Ups", "Decline Push-Ups", "Incline Push-Ups",
			"Archer Push-Ups", "Clap Push-Ups", "Plyo Push-Ups", "Hindu Push-Ups", "One-Arm Push-Ups",
			"Chest Dips", "Slow Push-Ups", "Explosive Push-Ups", "Sphinx Push-Ups", "Resistance Band Chest Press"},
	},
	{
		Name:  "Arm Exercises",
		Color: "orange",
		Exercises: []string{"Triceps Dips", "Close-Grip Push-Ups", "Isometric Arm Holds", "Arm Circles", "Towel Curls",
			"Wall Push-Ups", "Bodyweight Bicep Curl", "Static Arm Squeeze", "Negative Push-Ups", "Towel Triceps Extensions"},
	},
	{
		Name:  "Shoulder Exercises",
		Color: "yellow",
		Exercises: []string{"Pike Push-Ups", "Shoulder Taps", "Elevated Pike Push-Ups", "Wall Walks", "Handstand Holds",
			"Handstand Push-Ups", "Arm Raises", "Wall Angels", "Reverse Plank Shoulder Taps", "Scapular Push-Ups"},
	},
	{
		Name:  "Back Exercises",
		Color: "green",
		Exercises: []string{"Superman Hold", "Superman Raises", "Reverse Snow Angels", "Prone Y-W-T Raises", "Doorframe Rows",
			"Towel Rows", "Wall Pulls", "Glute Bridges", "Hip Thrusts", "Table Rows"},
	},
	{
		Name:  "Abs Workouts",
		Color: "blue",
		Exercises: []string{"Crunches", "Sit-Ups", "Leg Raises", "Flutter Kicks", "Scissor Kicks", "Bicycle Crunches",
			"Russian Twists", "V-Ups", "Plank", "Side Plank", "Mountain Climbers", "Plank Shoulder Taps",
			"Plank to Push-Up", "Hollow Body Hold", "Heel Touches"},
	},
	{
		Name:  "Sit-Up Variations",
		Color: "purple",
		Exercises: []string{"Standard Sit-Ups", "Decline Sit-Ups", "Oblique Sit-Ups", "Weighted Sit-Ups", "Cross Sit-Ups",
			"Butterfly Sit-Ups", "Jackknife Sit-Ups", "V-Sit Twists", "Sit-Up to Stand", "Sit-Up with Punches"},
	},
	{
		Name:  "Push-Up Variations",
		Color: "black",
		Exercises: []string{"Standard Push-Ups", "Wide Push-Ups", "Diamond Push-Ups", "Spiderman Push-Ups", "Staggered Push-Ups",
			"T Push-Ups", "Grasshopper Push-Ups", "Cross-Body Push-Ups", "Uneven Push-Ups", "Push-Up to Pike"},
	},
	{
		Name:  "Lunge Variations",
		Color: "red",
		Exercises: []string{"Forward Lunges", "Reverse Lunges", "Walking Lunges", "Jumping Lunges", "Lateral Lunges",
			"Curtsy Lunges", "Bulgarian Split Squats", "Step-Ups", "Lunge Pulses", "Wall-Supported Static Lunges"},
	},
	{
		Name:  "Full Body Workouts",
		Color: "white",
		Exercises: []string{"Burpees", "High Knees", "Jump Squats", "Squat to Front Kick", "Wall Sit",
			"Bear Crawl", "Crab Walk", "Plank Jacks", "Standing Long Jump", "Skater Jumps"},
	},
	{
		Name:  "Leg Workouts",
		Color: "brown",
		Exercises: []string{"Squats", "Narrow-Stance Squats", "Sumo Squats", "Jumping Squats", "Pistol Squats",
			"Assisted Pistol Squats", "Wall Sits", "Squat Pulses", "Calf Raises", "Single-Leg Calf Raises",
			"Glute Bridge March", "Glute Bridge with Leg Raise", "Donkey Kicks", "Fire Hydrants",
			"Standing Hamstring Curls", "Step-Back Lunges", "Skater Lunges", "Duck Walks", "Frog Jumps", "Wall Sit Calf Raises"},
	},
	{
		Name:  "Cardio & Athletic",
		Color: "orange",
		Exercises: []string{"Brisk Walking", "Incline Walking", "Power Walking", "Jogging", "Long-Distance Running",
			"Sprint Intervals", "40-Meter Sprints", "Hill Sprints", "Stair Sprints", "Backpedal Running",
			"Side Shuffles", "Zig-Zag Running", "Bear Crawls", "High Knee Sprints", "Bounding Strides"},
	},
	{
		Name:  "Recovery Time",
		Color: "blue",
		Exercises: []string{"5 Minutes", "10 Minutes", "15 Minutes", "20 Minutes", "25 Minutes", "30 Minutes",
			"45 Minutes", "1 Hour", "1.5 Hours", "2 Hours", "3 Hours", "4 Hours",
			"5 Hours", "6 Hours", "24 Hours"},
	},
}

// BuiltinCategories returns a copy of the static catalog.
func BuiltinCategories() []Category {
	out := make([]Category, len(builtinCategories))
	for i, c := range builtinCategories {
		c.Exercises = append([]string(nil), c.Exercises...)
		out[i] = c
	}
	return out
}

func builtinCategory(name string) (Category, bool) {
	for _, c := range builtinCategories {
		if c.Name == name {
			return c, true
		}
	}
	return Category{}, false
}

func isBuiltinExercise(name string) bool {
	for _, c := range builtinCategories {
		if slices.Contains(c.Exercises, name) {
			return true
		}
	}
	return false
}
