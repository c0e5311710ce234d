package vehicles

type RegisterVehicleRequest struct {
	LicensePlate string `json:"licensePlate" validate:"required,min=2,max=20"`
	Type         string `json:"type" validate:"omitempty,oneof=car motorcycle van electric"`
	Brand        string `json:"brand" validate:"max=50"`
	Model        string `json:"model" validate:"max=50"`
	Color        string `json:"color" validate:"max=30"`
}
