package mocks

//go:generate mockery --name Backend --srcpkg github.com/rvmarket-lab/rv-intel/internal/source --output ./source --outpkg sourcemocks --with-expecter
