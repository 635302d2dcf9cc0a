package keywords

var metalAll = concat(metalKeywords, metalTypes, metalFunctions, metalAttributes)

var metalKeywords = []Item{
	// function qualifiers
	kw("kernel", "Compute kernel function qualifier"),
	kw("vertex", "Vertex shader function qualifier"),
	kw("fragment", "Fragment shader function qualifier"),

	// address spaces
	kw("constant", "Constant address space qualifier"),
	kw("device", "Device address space qualifier"),
	kw("threadgroup", "Threadgroup address space qualifier"),
	kw("threadgroup_imageblock", "Threadgroup imageblock address space"),

	kw("const", "Constant type qualifier"),
	kw("constexpr", "Constant expression"),
	kw("static", "Static storage qualifier"),
	kw("volatile", "Volatile type qualifier"),

	// control flow
	kw("if", "Conditional statement"),
	kw("else", "Alternative conditional branch"),
	kw("switch", "Switch statement"),
	kw("case", "Case label"),
	kw("default", "Default case label"),
	kw("for", "For loop"),
	kw("while", "While loop"),
	kw("do", "Do-while loop"),
	kw("break", "Break statement"),
	kw("continue", "Continue statement"),
	kw("return", "Return statement"),
	kw("discard_fragment", "Discard current fragment"),

	kw("namespace", "Namespace declaration"),
	kw("using", "Using directive"),

	kw("struct", "Structure type"),
	kw("enum", "Enumeration type"),
	kw("typedef", "Type definition"),
}

var metalTypes = []Item{
	// scalars
	ty("void", "Void type"),
	ty("bool", "Boolean type"),
	ty("char", "8-bit signed integer"),
	ty("uchar", "8-bit unsigned integer"),
	ty("short", "16-bit signed integer"),
	ty("ushort", "16-bit unsigned integer"),
	ty("int", "32-bit signed integer"),
	ty("uint", "32-bit unsigned integer"),
	ty("half", "16-bit floating point"),
	ty("float", "32-bit floating point"),

	ty("bool2", "2-component boolean vector"),
	ty("char2", "2-component char vector"),
	ty("uchar2", "2-component uchar vector"),
	ty("short2", "2-component short vector"),
	ty("ushort2", "2-component ushort vector"),
	ty("int2", "2-component int vector"),
	ty("uint2", "2-component uint vector"),
	ty("half2", "2-component half vector"),
	ty("float2", "2-component float vector"),

	ty("bool3", "3-component boolean vector"),
	ty("char3", "3-component char vector"),
	ty("uchar3", "3-component uchar vector"),
	ty("short3", "3-component short vector"),
	ty("ushort3", "3-component ushort vector"),
	ty("int3", "3-component int vector"),
	ty("uint3", "3-component uint vector"),
	ty("half3", "3-component half vector"),
	ty("float3", "3-component float vector"),

	ty("bool4", "4-component boolean vector"),
	ty("char4", "4-component char vector"),
	ty("uchar4", "4-component uchar vector"),
	ty("short4", "4-component short vector"),
	ty("ushort4", "4-component ushort vector"),
	ty("int4", "4-component int vector"),
	ty("uint4", "4-component uint vector"),
	ty("half4", "4-component half vector"),
	ty("float4", "4-component float vector"),

	ty("packed_float3", "Packed 3-component float vector"),
	ty("packed_float4", "Packed 4-component float vector"),
	ty("packed_half3", "Packed 3-component half vector"),
	ty("packed_half4", "Packed 4-component half vector"),

	ty("float2x2", "2x2 float matrix"),
	ty("float2x3", "2x3 float matrix"),
	ty("float2x4", "2x4 float matrix"),
	ty("float3x2", "3x2 float matrix"),
	ty("float3x3", "3x3 float matrix"),
	ty("float3x4", "3x4 float matrix"),
	ty("float4x2", "4x2 float matrix"),
	ty("float4x3", "4x3 float matrix"),
	ty("float4x4", "4x4 float matrix"),

	ty("texture1d", "1D texture"),
	ty("texture1d_array", "1D texture array"),
	ty("texture2d", "2D texture"),
	ty("texture2d_array", "2D texture array"),
	ty("texture2d_ms", "2D multisample texture"),
	ty("texture3d", "3D texture"),
	ty("texturecube", "Cube texture"),
	ty("texturecube_array", "Cube texture array"),

	ty("depth2d", "2D depth texture"),
	ty("depth2d_array", "2D depth texture array"),
	ty("depthcube", "Cube depth texture"),

	ty("sampler", "Texture sampler"),
	ty("samplerstate", "Sampler state"),
}

var metalFunctions = []Item{
	fn("abs", "Absolute value", "abs($0)"),
	fn("acos", "Arc cosine", "acos($0)"),
	fn("asin", "Arc sine", "asin($0)"),
	fn("atan", "Arc tangent", "atan($0)"),
	fn("atan2", "Arc tangent of y/x", "atan2($0, $1)"),
	fn("ceil", "Round up to nearest integer", "ceil($0)"),
	fn("clamp", "Clamp value between min and max", "clamp($0, $1, $2)"),
	fn("cos", "Cosine", "cos($0)"),
	fn("cross", "Cross product", "cross($0, $1)"),
	fn("degrees", "Convert radians to degrees", "degrees($0)"),
	fn("distance", "Distance between two points", "distance($0, $1)"),
	fn("dot", "Dot product", "dot($0, $1)"),
	fn("exp", "Exponential function", "exp($0)"),
	fn("exp2", "Base-2 exponential", "exp2($0)"),
	fn("floor", "Round down to nearest integer", "floor($0)"),
	fn("fma", "Fused multiply-add", "fma($0, $1, $2)"),
	fn("fmax", "Maximum value", "fmax($0, $1)"),
	fn("fmin", "Minimum value", "fmin($0, $1)"),
	fn("fmod", "Floating-point remainder", "fmod($0, $1)"),
	fn("fract", "Fractional part", "fract($0)"),
	fn("length", "Vector length", "length($0)"),
	fn("log", "Natural logarithm", "log($0)"),
	fn("log2", "Base-2 logarithm", "log2($0)"),
	fn("max", "Maximum value", "max($0, $1)"),
	fn("min", "Minimum value", "min($0, $1)"),
	fn("mix", "Linear interpolation", "mix($0, $1, $2)"),
	fn("normalize", "Normalize vector", "normalize($0)"),
	fn("pow", "Power function", "pow($0, $1)"),
	fn("radians", "Convert degrees to radians", "radians($0)"),
	fn("reflect", "Reflect vector", "reflect($0, $1)"),
	fn("refract", "Refract vector", "refract($0, $1, $2)"),
	fn("round", "Round to nearest integer", "round($0)"),
	fn("rsqrt", "Reciprocal square root", "rsqrt($0)"),
	fn("saturate", "Clamp to [0, 1]", "saturate($0)"),
	fn("sign", "Sign of value", "sign($0)"),
	fn("sin", "Sine", "sin($0)"),
	fn("smoothstep", "Smooth interpolation", "smoothstep($0, $1, $2)"),
	fn("sqrt", "Square root", "sqrt($0)"),
	fn("step", "Step function", "step($0, $1)"),
	fn("tan", "Tangent", "tan($0)"),
	fn("trunc", "Truncate to integer", "trunc($0)"),

	fn("faceforward", "Orient normal to face viewer", "faceforward($0, $1, $2)"),

	fn("sample", "Sample texture", "sample($0, $1)"),
	fn("read", "Read from texture", "read($0)"),
	fn("write", "Write to texture", "write($0, $1)"),
	fn("gather", "Gather texture samples", "gather($0, $1)"),
}

var metalAttributes = []Item{
	attr("[[stage_in]]", "Vertex function input"),
	attr("[[position]]", "Vertex position output"),
	attr("[[vertex_id]]", "Vertex ID"),
	attr("[[instance_id]]", "Instance ID"),
	attr("[[buffer(0)]]", "Buffer argument"),
	attr("[[texture(0)]]", "Texture argument"),
	attr("[[sampler(0)]]", "Sampler argument"),
	attr("[[attribute(0)]]", "Vertex attribute"),
	attr("[[color(0)]]", "Fragment color output"),
	attr("[[thread_position_in_grid]]", "Thread position in grid"),
	attr("[[thread_position_in_threadgroup]]", "Thread position in threadgroup"),
	attr("[[threadgroup_position_in_grid]]", "Threadgroup position in grid"),
	attr("[[threads_per_threadgroup]]", "Threads per threadgroup"),
}
