package model

// Labels is ordered by class index of the trained head. Do not reorder.
var Labels = [...]string{
	"Corn___Common_Rust",
	"Corn___Gray_Leaf_Spot",
	"Corn___Healthy",
	"Corn___Northern_Leaf_Blight",
	"Invalid",
	"Potato___Early_Blight",
	"Potato___Healthy",
	"Potato___Late_Blight",
	"Rice___Brown_Spot",
	"Rice___Healthy",
	"Rice___Leaf_Blast",
	"Rice___Neck_Blast",
	"Tomato___Bacterial_spot",
	"Tomato___Early_blight",
	"Tomato___healthy",
	"Tomato___Late_blight",
	"Tomato___Leaf_Mold",
	"Tomato___Septoria_leaf_spot",
	"Tomato___Spider_mites ", // trailing space is part of the trained label
	"Tomato___Target_Spot",
	"Tomato___Tomato_mosaic_virus",
	"Tomato___Tomato_Yellow_Leaf_Curl_Virus",
	"Wheat___Brown_Rust",
	"Wheat___Healthy",
	"Wheat___Yellow_Rust",
}

const NumClasses = len(Labels)
